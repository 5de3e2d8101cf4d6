package packages

import (
	"fmt"
	"strconv"
)

// Record is a single binary package as published by the
// catalog for one branch and architecture.
type Record struct {
	Name    string `json:"name"`
	Epoch   string `json:"epoch,omitempty"`
	Version string `json:"version"`
	Release string `json:"release"`
	Arch    string `json:"arch,omitempty"`
}

// Snapshot is the set of packages returned for one
// branch and architecture. Order is not significant.
type Snapshot []Record

// VersionComparator orders two records of the same package.
// Compare returns a negative number when a is older than b,
// zero when they are equal and a positive number when a is newer.
type VersionComparator interface {
	Compare(a, b Record) int
}

// EVR returns the comparable version identifier of the record.
// The epoch is only included when one was published.
func (r Record) EVR() string {
	if r.Epoch == "" || r.Epoch == "0" {
		return r.VersionRelease()
	}
	return r.Epoch + ":" + r.VersionRelease()
}

// VersionRelease returns "version-release".
func (r Record) VersionRelease() string {
	return fmt.Sprintf("%s-%s", r.Version, r.Release)
}

// String returns "name-version-release".
func (r Record) String() string {
	return fmt.Sprintf("%s-%s", r.Name, r.VersionRelease())
}

// EpochNumber returns the numeric epoch, treating an absent
// epoch as zero.
func (r Record) EpochNumber() (int64, error) {
	if r.Epoch == "" {
		return 0, nil
	}
	return strconv.ParseInt(r.Epoch, 10, 64)
}
