package model

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"path"
	"path/filepath"
	"strings"
)

// Artifact is a single file to download for an installation.
//
// Artifacts are built per install run and discarded afterwards.
//
// Example:
//
//	a := Artifact{
//	    URL:      "https://maven.quiltmc.org/repository/release/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar",
//	    Path:     "/home/me/.minecraft/libraries/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar",
//	    Checksum: &Checksum{Algorithm: SHA1, Hex: "0a1b..."},
//	}
type Artifact struct {
	// URL is where the artifact is downloaded from.
	URL string

	// Path is the final destination on disk.
	Path string

	// Checksum is the expected digest, or nil if unknown.
	Checksum *Checksum

	// Size is the expected size in bytes, or 0 if unknown.
	Size int64
}

// Name returns the base file name of the destination path.
func (a Artifact) Name() string {
	return filepath.Base(a.Path)
}

// HashAlgorithm names a supported digest.
type HashAlgorithm string

const (
	SHA1   HashAlgorithm = "sha1"
	SHA256 HashAlgorithm = "sha256"
)

// New returns a fresh hash.Hash for the algorithm.
func (h HashAlgorithm) New() (hash.Hash, error) {
	switch h {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", string(h))
	}
}

// Checksum is an expected digest in lowercase hex.
type Checksum struct {
	Algorithm HashAlgorithm
	Hex       string
}

// NewChecksum validates hexDigest against the algorithm's digest length.
func NewChecksum(algo HashAlgorithm, hexDigest string) (*Checksum, error) {
	h, err := algo.New()
	if err != nil {
		return nil, err
	}
	hexDigest = strings.ToLower(strings.TrimSpace(hexDigest))
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return nil, fmt.Errorf("invalid %s digest %q: %w", algo, hexDigest, err)
	}
	if len(raw) != h.Size() {
		return nil, fmt.Errorf("invalid %s digest %q: want %d bytes, got %d", algo, hexDigest, h.Size(), len(raw))
	}
	return &Checksum{Algorithm: algo, Hex: hexDigest}, nil
}

// Matches reports whether a computed digest equals the expected one.
func (c *Checksum) Matches(sum []byte) bool {
	return strings.EqualFold(hex.EncodeToString(sum), c.Hex)
}

func (c *Checksum) String() string {
	return string(c.Algorithm) + ":" + c.Hex
}

// MavenCoordinate identifies a Maven artifact as group:artifact:version[:classifier].
type MavenCoordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseMavenCoordinate parses "group:artifact:version[:classifier][@ext]".
// The extension defaults to "jar".
//
// Example:
//
//	c, _ := ParseMavenCoordinate("org.quiltmc:quilt-loader:0.23.1")
//	c.Path() // "org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar"
func ParseMavenCoordinate(s string) (MavenCoordinate, error) {
	ext := "jar"
	if at := strings.LastIndex(s, "@"); at >= 0 {
		ext = s[at+1:]
		s = s[:at]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return MavenCoordinate{}, fmt.Errorf("invalid maven coordinate %q", s)
	}
	for _, p := range parts {
		if p == "" {
			return MavenCoordinate{}, fmt.Errorf("invalid maven coordinate %q", s)
		}
	}

	c := MavenCoordinate{
		Group:     parts[0],
		Artifact:  parts[1],
		Version:   parts[2],
		Extension: ext,
	}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// FileName returns "artifact-version[-classifier].ext".
func (c MavenCoordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Extension
}

// Path returns the repository-relative path using forward slashes.
func (c MavenCoordinate) Path() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, c.FileName())
}

// URL joins the repository base URL and the artifact path.
func (c MavenCoordinate) URL(repository string) string {
	return strings.TrimSuffix(repository, "/") + "/" + c.Path()
}

func (c MavenCoordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}
