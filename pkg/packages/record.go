package packages

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MalformedRecordError is returned when a package entry is
// missing one of its required fields.
type MalformedRecordError struct {
	// Index is the position of the entry in its snapshot
	Index int
	// Name is the package name, if it was present
	Name    string
	Missing []string
}

func (e *MalformedRecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("malformed package record at index %d: missing %s", e.Index, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("malformed package record '%s' at index %d: missing %s", e.Name, e.Index, strings.Join(e.Missing, ", "))
}

// WireRecord is a package entry as it arrives from the catalog.
// Pointer fields let us tell an absent key from a present one.
type WireRecord struct {
	Name    *string     `json:"name"`
	Epoch   json.Number `json:"epoch,omitempty"`
	Version *string     `json:"version"`
	Release *string     `json:"release"`
	Arch    *string     `json:"arch,omitempty"`
}

// Parse converts loosely-typed catalog entries into validated
// records. The first invalid entry fails the whole snapshot.
func Parse(entries []WireRecord) (Snapshot, error) {
	out := make(Snapshot, 0, len(entries))
	for i, e := range entries {
		r := Record{
			Name:    deref(e.Name),
			Version: deref(e.Version),
			Release: deref(e.Release),
			Arch:    deref(e.Arch),
			Epoch:   e.Epoch.String(),
		}
		if err := r.validate(i); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Validate checks that every record in the snapshot carries
// a name, version and release.
func (s Snapshot) Validate() error {
	for i := range s {
		if err := s[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (r Record) validate(i int) error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Version == "" {
		missing = append(missing, "version")
	}
	if r.Release == "" {
		missing = append(missing, "release")
	}
	if r.Epoch != "" {
		if _, err := strconv.ParseUint(r.Epoch, 10, 63); err != nil {
			missing = append(missing, "numeric epoch")
		}
	}
	if len(missing) > 0 {
		return &MalformedRecordError{
			Index:   i,
			Name:    r.Name,
			Missing: missing,
		}
	}
	return nil
}

// Index builds a lookup of records by package name.
// When a name repeats, the last record wins.
func (s Snapshot) Index() map[string]Record {
	idx := make(map[string]Record, len(s))
	for _, r := range s {
		idx[r.Name] = r
	}
	return idx
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
