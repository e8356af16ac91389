package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when a version feed parses but lists nothing.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrMalformedResponse is returned when a remote document cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoMatchingVersion is returned when a Stable or PreRelease policy
	// finds nothing. Remote feeds always carry a stable entry, so this
	// points at the environment rather than at user input.
	ErrNoMatchingVersion = errors.New("no matching version")
)

// NetworkError is a transport-level failure that survived the retry budget.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports an explicitly requested version that is absent
// from the catalog. Kind names the catalog, e.g. "Minecraft" or "Quilt Loader".
type NotFoundError struct {
	Kind      string
	Requested string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("could not find version %s", e.Requested)
	}
	return fmt.Sprintf("could not find %s version %s", e.Kind, e.Requested)
}

// IntegrityError reports a checksum mismatch. It is never retried.
type IntegrityError struct {
	URL      string
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s (from %s): expected %s, got %s", e.Path, e.URL, e.Expected, e.Actual)
}

// FilesystemError carries the offending path of a failed file operation.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Install stages reported in InstallError.
const (
	StageMetadata  = "metadata"
	StageArtifacts = "artifacts"
	StageVersion   = "version files"
	StageProfile   = "launcher profile"
	StageScript    = "launch script"
)

// InstallError wraps a failure with the pipeline stage it happened in.
type InstallError struct {
	Target string
	Stage  string
	Err    error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("%s install failed at %s: %v", e.Target, e.Stage, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }
