package alpine

import "github.com/go-logr/logr"

// Comparator orders package records using apk
// version semantics.
type Comparator struct {
	Log logr.Logger
}

const releasePrefix = "r"
