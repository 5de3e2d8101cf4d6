package rpm

// EVR is an epoch-version-release triple.
type EVR struct {
	// Epoch is empty when none was given, which
	// compares equal to "0".
	Epoch   string
	Version string
	Release string
}

// Comparator orders package records using RPM
// epoch-version-release semantics.
type Comparator struct{}

const defaultEpoch = "0"
