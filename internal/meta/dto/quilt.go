package dto

import (
	"github.com/handiism/quilt-installer/internal/model"
)

// GameVersion is an entry of Quilt Meta's /v3/versions/game feed.
type GameVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// LoaderVersion is an entry of Quilt Meta's /v3/versions/loader feed.
type LoaderVersion struct {
	Separator string `json:"separator"`
	Build     int    `json:"build"`
	Maven     string `json:"maven"`
	Version   string `json:"version"`
}

// ToLoaderVersion converts the feed entry into a model.LoaderVersion.
func (lv *LoaderVersion) ToLoaderVersion() (model.LoaderVersion, error) {
	return model.NewLoaderVersion(lv.Version, lv.Maven)
}

// LaunchProfile is the launcher version document served at
// /v3/versions/loader/{game}/{loader}/profile/json.
//
// Only the fields the installer needs are decoded; the document itself is
// written to disk verbatim.
type LaunchProfile struct {
	ID           string    `json:"id"`
	InheritsFrom string    `json:"inheritsFrom"`
	MainClass    string    `json:"mainClass"`
	Libraries    []Library `json:"libraries"`
}

// Library is a companion library declared by a launch profile.
type Library struct {
	// Name is the Maven coordinate.
	Name string `json:"name"`

	// URL is the Maven repository base URL.
	URL string `json:"url"`

	// Sha1 and Size are present only on some entries.
	Sha1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}
