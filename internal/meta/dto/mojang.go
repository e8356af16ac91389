package dto

// VersionManifest is Mojang's version_manifest_v2.json.
type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestEntry `json:"versions"`
}

// ManifestEntry points at one version's detail document.
type ManifestEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Sha1        string `json:"sha1"`
	ReleaseTime string `json:"releaseTime"`
}

// VersionDetail is the per-version document linked from the manifest.
type VersionDetail struct {
	ID        string `json:"id"`
	Downloads struct {
		Server *Download `json:"server"`
		Client *Download `json:"client"`
	} `json:"downloads"`
}

// Download is a file reference with its SHA-1 and size.
type Download struct {
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}
