package diff

// Result is the comparison of a base snapshot against
// a target snapshot for one architecture. Every list is
// sorted and a package name appears in at most one of them.
type Result struct {
	InTargetNotInBase     []string `json:"in_target_not_in_base"`
	InBaseNotInTarget     []string `json:"in_base_not_in_target"`
	HigherVersionInTarget []string `json:"higher_version_in_target"`
}

// Empty returns true if the snapshots did not differ.
func (r *Result) Empty() bool {
	return len(r.InTargetNotInBase) == 0 && len(r.InBaseNotInTarget) == 0 && len(r.HigherVersionInTarget) == 0
}
