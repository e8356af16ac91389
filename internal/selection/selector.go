package selection

import (
	"fmt"
	"strings"

	"github.com/handiism/quilt-installer/internal/model"
)

// Version is what a catalog entry must expose to be selectable.
// model.PlatformVersion and model.LoaderVersion implement it.
type Version interface {
	Identifier() string
	IsStable() bool
}

// Kind tags a selection policy.
type Kind int

const (
	// Stable picks the first stable entry.
	Stable Kind = iota

	// PreRelease picks the first non-stable entry: a snapshot for the game,
	// a version with a pre-release tag for the loader.
	PreRelease

	// Explicit picks the entry whose identifier equals Policy.ID exactly.
	Explicit
)

// Policy is a version selection policy.
type Policy struct {
	Kind Kind

	// ID is the requested identifier for Explicit policies.
	ID string
}

// ExplicitPolicy returns a policy matching id exactly.
func ExplicitPolicy(id string) Policy {
	return Policy{Kind: Explicit, ID: id}
}

func (p Policy) String() string {
	switch p.Kind {
	case Stable:
		return "stable"
	case PreRelease:
		return "pre-release"
	default:
		return p.ID
	}
}

// Select resolves policy against catalog.
//
// "First" means first in catalog order. Catalogs are published newest-first
// by the metadata provider; Select relies on that order and never re-sorts.
// The catalog is not modified and identical inputs always give identical
// results.
//
// Returns:
//   - *model.NotFoundError for an Explicit identifier absent from catalog
//   - model.ErrNoMatchingVersion when Stable or PreRelease match nothing
//
// Example:
//
//	games := []model.PlatformVersion{{ID: "1.20.4", Stable: true}, {ID: "24w10a"}}
//	v, _ := Select(games, Policy{Kind: PreRelease}) // v.ID == "24w10a"
func Select[V Version](catalog []V, policy Policy) (V, error) {
	return SelectKind(catalog, policy, "")
}

// SelectKind is Select with a catalog name used in error messages,
// e.g. "Minecraft" or "Quilt Loader".
func SelectKind[V Version](catalog []V, policy Policy, kind string) (V, error) {
	var zero V

	for _, v := range catalog {
		if matches(v, policy) {
			return v, nil
		}
	}

	switch policy.Kind {
	case Explicit:
		return zero, &model.NotFoundError{Kind: kind, Requested: policy.ID}
	default:
		what := strings.TrimSpace(kind + " version")
		return zero, fmt.Errorf("no %s %s in catalog of %d entries: %w", policy, what, len(catalog), model.ErrNoMatchingVersion)
	}
}

func matches[V Version](v V, policy Policy) bool {
	switch policy.Kind {
	case Stable:
		return v.IsStable()
	case PreRelease:
		return !v.IsStable()
	case Explicit:
		return v.Identifier() == policy.ID
	default:
		return false
	}
}

// Filter returns the entries shown when pre-releases are hidden or not,
// keeping catalog order. It backs the version pickers of the front ends.
func Filter[V Version](catalog []V, includePreReleases bool) []V {
	out := make([]V, 0, len(catalog))
	for _, v := range catalog {
		if includePreReleases || v.IsStable() {
			out = append(out, v)
		}
	}
	return out
}
