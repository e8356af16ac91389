package model

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// PlatformVersion is one entry of the game version catalog.
//
// Identity is ID. Catalogs preserve remote-feed order, which the metadata
// provider publishes newest-first.
//
// Example:
//
//	v := PlatformVersion{ID: "1.20.4", Stable: true, ReleaseOrdinal: 812}
type PlatformVersion struct {
	// ID is the version identifier as published, e.g. "1.20.4" or "24w10a".
	ID string

	// Stable is true for full releases and false for snapshots, pre-releases
	// and release candidates.
	Stable bool

	// ReleaseOrdinal orders versions by recency: larger is newer. It is
	// opaque and only meaningful within the catalog it came from.
	ReleaseOrdinal int
}

// Identifier returns the version identifier used for explicit selection.
func (v PlatformVersion) Identifier() string { return v.ID }

// IsStable reports whether v is a full release.
func (v PlatformVersion) IsStable() bool { return v.Stable }

// String implements fmt.Stringer.
func (v PlatformVersion) String() string { return v.ID }

// LoaderVersion is one entry of the loader version catalog.
//
// Version holds a structured semantic version, so ordering and pre-release
// detection never fall back to string comparison:
//
//	v, _ := NewLoaderVersion("0.23.0-beta.7", "org.quiltmc:quilt-loader:0.23.0-beta.7")
//	v.IsStable()       // false
//	v.Identifier()     // "0.23.0-beta.7"
type LoaderVersion struct {
	// Version is the parsed semantic version.
	Version *semver.Version

	// Maven is the loader's Maven coordinate, e.g.
	// "org.quiltmc:quilt-loader:0.23.1".
	Maven string
}

// NewLoaderVersion parses raw as a semantic version.
func NewLoaderVersion(raw, maven string) (LoaderVersion, error) {
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		v, err = semver.NewVersion(raw)
		if err != nil {
			return LoaderVersion{}, fmt.Errorf("parse loader version %q: %w", raw, err)
		}
	}
	return LoaderVersion{Version: v, Maven: maven}, nil
}

// MustLoaderVersion is like NewLoaderVersion but panics on error.
// Intended for tests and constant tables.
func MustLoaderVersion(raw string) LoaderVersion {
	v, err := NewLoaderVersion(raw, "")
	if err != nil {
		panic(err)
	}
	return v
}

// Identifier returns the normalized semver string: "v1.2" from a lenient
// feed is identified as "1.2.0".
func (v LoaderVersion) Identifier() string {
	if v.Version == nil {
		return ""
	}
	return v.Version.String()
}

// IsStable reports whether the pre-release component is empty.
func (v LoaderVersion) IsStable() bool {
	return v.Version != nil && v.Version.Prerelease() == ""
}

// Compare orders loader versions by semver precedence.
// It returns -1, 0 or 1.
func (v LoaderVersion) Compare(other LoaderVersion) int {
	return v.Version.Compare(other.Version)
}

// String implements fmt.Stringer.
func (v LoaderVersion) String() string { return v.Identifier() }
