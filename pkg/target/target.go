// Package target holds the ordered set of things a run checks and the
// identity scheme used to key their results.
package target

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Kind distinguishes bare hosts from named services running on a host.
type Kind string

const (
	KindHost    Kind = "host"
	KindService Kind = "service"
)

var (
	ErrTargetNotFound  = errors.New("target not found")
	ErrAmbiguousTarget = errors.New("target name is ambiguous")
)

// ID is an opaque key for a Target. It never depends on a sanitized
// display string, so targets whose names only differ in characters that are
// unsafe on disk still get distinct IDs.
type ID string

// Short returns a prefix suitable for file names and listings. The
// ordinal suffix of a duplicate entry is kept so Short stays unique.
func (id ID) Short() string {
	hash, ordinal, dup := strings.Cut(string(id), "-")
	if len(hash) > 12 {
		hash = hash[:12]
	}
	if dup {
		return hash + "-" + ordinal
	}
	return hash
}

type Target struct {
	ID          ID
	Address     string
	Name        string
	DisplayName string
	Kind        Kind
	Group       string // config section the target came from (local, remote, docker, dns)
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.DisplayName, t.Address)
}

// Entry is a target as declared in configuration, before identity is assigned.
type Entry struct {
	Address string
	Name    string
	Kind    Kind
	Group   string
}

func deriveID(e Entry) ID {
	h := sha256.New()
	for _, part := range []string{string(e.Kind), e.Group, e.Address, e.Name} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// Registry is the ordered, immutable list of targets for one run.
type Registry struct {
	targets []Target
	byID    map[ID]int
}

// NewRegistry assigns IDs in declaration order. Identical entries declared
// twice get an ordinal suffix so every target still owns one key.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		targets: make([]Target, 0, len(entries)),
		byID:    make(map[ID]int, len(entries)),
	}
	nameCount := make(map[string]int)
	for _, e := range entries {
		nameCount[strings.TrimSpace(e.Name)]++
	}
	displays := make(map[string]bool, len(entries))

	for i, e := range entries {
		e.Address = strings.TrimSpace(e.Address)
		e.Name = strings.TrimSpace(e.Name)
		if e.Address == "" {
			return nil, fmt.Errorf("entry %d: address is mandatory", i)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("entry %d: name is mandatory", i)
		}
		if e.Kind == "" {
			e.Kind = KindHost
		}

		id := deriveID(e)
		for n := 2; ; n++ {
			if _, taken := r.byID[id]; !taken {
				break
			}
			id = ID(fmt.Sprintf("%s-%d", deriveID(e), n))
		}

		display := e.Name
		if nameCount[e.Name] > 1 {
			display = e.Name + "@" + e.Address
		}
		if displays[display] {
			base := display
			for n := 2; displays[display]; n++ {
				display = fmt.Sprintf("%s#%d", base, n)
			}
		}
		displays[display] = true

		r.byID[id] = len(r.targets)
		r.targets = append(r.targets, Target{
			ID:          id,
			Address:     e.Address,
			Name:        e.Name,
			DisplayName: display,
			Kind:        e.Kind,
			Group:       e.Group,
		})
	}
	return r, nil
}

// Targets returns the targets in declaration order.
func (r *Registry) Targets() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Lookup finds a target by name. A name shared by several targets must be
// qualified as "name@address".
func (r *Registry) Lookup(name string) (Target, error) {
	name = strings.TrimSpace(name)
	var matches []Target
	for _, t := range r.targets {
		if t.Name == name || t.DisplayName == name {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return Target{}, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return Target{}, fmt.Errorf("%w: %q matches %d targets, use name@address", ErrAmbiguousTarget, name, len(matches))
	}
}

// Filter returns the targets whose group is one of groups, in order. No
// groups means all targets.
func (r *Registry) Filter(groups ...string) []Target {
	if len(groups) == 0 {
		return r.Targets()
	}
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}
	var out []Target
	for _, t := range r.targets {
		if want[t.Group] {
			out = append(out, t)
		}
	}
	return out
}
