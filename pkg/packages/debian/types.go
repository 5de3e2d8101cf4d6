package debian

import "github.com/go-logr/logr"

// Comparator orders package records using Debian
// version semantics.
type Comparator struct {
	// Log receives a message whenever a version could
	// not be parsed. The zero value discards.
	Log logr.Logger
}
