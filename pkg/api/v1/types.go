package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

// VersionScheme selects how package versions are ordered.
type VersionScheme string

const (
	SchemeRPM    VersionScheme = "rpm"
	SchemeDebian VersionScheme = "debian"
	SchemeAlpine VersionScheme = "alpine"
)

var Schemes = []VersionScheme{
	SchemeRPM,
	SchemeDebian,
	SchemeAlpine,
}

type ComparisonSpec struct {
	// URL is the catalog base address.
	URL string `json:"url,omitempty"`
	// Base is the branch that is compared against.
	Base string `json:"base,omitempty"`
	// Target is the branch that is expected to be ahead.
	Target        string        `json:"target,omitempty"`
	Architectures []string      `json:"architectures,omitempty"`
	Scheme        VersionScheme `json:"scheme,omitempty"`
	Parallelism   int           `json:"parallelism,omitempty"`
	Timeout       string        `json:"timeout,omitempty"`
	Retry         RetrySpec     `json:"retry,omitempty"`
	Output        OutputSpec    `json:"output,omitempty"`
}

type RetrySpec struct {
	Attempts int    `json:"attempts,omitempty"`
	Delay    string `json:"delay,omitempty"`
}

type OutputSpec struct {
	File    string `json:"file,omitempty"`
	Dir     string `json:"dir,omitempty"`
	Archive string `json:"archive,omitempty"`
}

type Comparison struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ComparisonSpec `json:"spec"`
}

const Kind = "Comparison"
