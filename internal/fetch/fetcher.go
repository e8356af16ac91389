package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/quilt-installer/internal/http"
	"github.com/handiism/quilt-installer/internal/model"
)

// Source is the network capability the Fetcher downloads from.
// *http.Client implements it.
type Source interface {
	Open(ctx context.Context, url string) (io.ReadCloser, int64, error)
	GetFileSize(ctx context.Context, url string) (int64, error)
}

// Options controls retry behaviour.
type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialInterval is the wait before the first retry.
	InitialInterval time.Duration

	// Multiplier grows the interval after every retry.
	Multiplier float64

	// MaxInterval caps a single wait.
	MaxInterval time.Duration
}

// DefaultOptions returns the retry policy used when none is configured:
// 5 retries starting at 500ms and doubling, capped at 10s.
func DefaultOptions() Options {
	return Options{
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		Multiplier:      2,
		MaxInterval:     10 * time.Second,
	}
}

// Fetcher downloads artifacts to disk.
//
// Every download is staged in a hidden file next to its destination,
// verified, then renamed into place, so a destination path never holds a
// partial or unverified file.
//
// Example usage:
//
//	f := fetch.NewFetcher(http.NewClient(), fetch.DefaultOptions())
//	err := f.FetchAll(ctx, artifacts, 3, func(a model.Artifact, skipped bool) {
//	    fmt.Println("done:", a.Name())
//	})
type Fetcher struct {
	source Source
	opts   Options
}

// NewFetcher creates a Fetcher.
func NewFetcher(source Source, opts Options) *Fetcher {
	if opts.Multiplier < 1 {
		opts.Multiplier = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Fetcher{source: source, opts: opts}
}

// Fetch downloads a single artifact.
//
// The fetch is a no-op when the destination already matches the expected
// checksum and size. Transient network failures are retried with growing
// backoff; 4xx responses, checksum mismatches and filesystem failures are not.
//
// Returns:
//   - *model.IntegrityError when the checksum does not match
//   - *model.NetworkError when the download fails for good
//   - *model.FilesystemError when the destination cannot be written
//   - ctx.Err() when cancelled
func (f *Fetcher) Fetch(ctx context.Context, a model.Artifact) error {
	_, err := f.fetch(ctx, a)
	return err
}

// FetchAll downloads artifacts with at most limit fetches in flight.
//
// The first unrecoverable error cancels the remaining fetches and is
// returned once all started fetches have stopped. onDone, if set, is called
// after each successful artifact from the fetching goroutine; skipped
// reports whether the existing file was kept.
func (f *Fetcher) FetchAll(ctx context.Context, artifacts []model.Artifact, limit int, onDone func(a model.Artifact, skipped bool)) error {
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	seen := make(map[string]struct{}, len(artifacts))
	for _, a := range artifacts {
		if _, dup := seen[a.Path]; dup {
			log.Debugf("skipping duplicate artifact %s", a.Path)
			continue
		}
		seen[a.Path] = struct{}{}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			skipped, err := f.fetch(ctx, a)
			if err != nil {
				return err
			}
			if onDone != nil {
				onDone(a, skipped)
			}
			return nil
		})
	}

	return g.Wait()
}

func (f *Fetcher) fetch(ctx context.Context, a model.Artifact) (bool, error) {
	logger := log.WithFields(log.Fields{"url": a.URL, "path": a.Path})

	if f.upToDate(ctx, a) {
		logger.Debug("artifact up to date, skipping download")
		return true, nil
	}

	err := f.retry(ctx, logger, func() error { return f.download(ctx, a) })
	if err == nil {
		logger.Debug("artifact downloaded")
		return false, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	var integrityErr *model.IntegrityError
	var fsErr *model.FilesystemError
	switch {
	case errors.As(err, &integrityErr):
		return false, integrityErr
	case errors.As(err, &fsErr):
		return false, err
	default:
		return false, &model.NetworkError{URL: a.URL, Err: err}
	}
}

// Retry runs op under the fetcher's retry policy. Transient network
// failures are retried with the same backoff as downloads; any other error,
// or cancellation of ctx, ends the loop and is returned as is.
func (f *Fetcher) Retry(ctx context.Context, url string, op func() error) error {
	return f.retry(ctx, log.WithField("url", url), op)
}

func (f *Fetcher) retry(ctx context.Context, logger *log.Entry, op func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !http.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.WithField("attempt", attempt).Warnf("request failed, retrying in %s: %v", wait, err)
	}
	return backoff.RetryNotify(operation, backoff.WithContext(f.newBackOff(), ctx), notify)
}

func (f *Fetcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.opts.InitialInterval
	b.Multiplier = f.opts.Multiplier
	if f.opts.MaxInterval > 0 {
		b.MaxInterval = f.opts.MaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(f.opts.MaxRetries))
}

// download performs one attempt: stream to a staged file, verify, promote.
func (f *Fetcher) download(ctx context.Context, a model.Artifact) (err error) {
	body, _, err := f.source.Open(ctx, a.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	stage, err := newStagedFile(a.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if discardErr := stage.discard(); discardErr != nil {
				err = multierror.Append(err, discardErr)
			}
		}
	}()

	written, digest, err := stage.copyFrom(body, a.Checksum)
	if err != nil {
		return err
	}

	if a.Size > 0 && written != a.Size {
		return &model.IntegrityError{
			URL:      a.URL,
			Path:     a.Path,
			Expected: fmt.Sprintf("%d bytes", a.Size),
			Actual:   fmt.Sprintf("%d bytes", written),
		}
	}
	if a.Checksum != nil && !a.Checksum.Matches(digest) {
		return &model.IntegrityError{
			URL:      a.URL,
			Path:     a.Path,
			Expected: a.Checksum.String(),
			Actual:   fmt.Sprintf("%s:%x", a.Checksum.Algorithm, digest),
		}
	}

	return stage.promote(a.Path)
}

// upToDate reports whether the destination already holds the artifact.
//
// With a checksum the file is hashed; with only a size the size decides;
// with neither, the remote size is probed with a HEAD request.
func (f *Fetcher) upToDate(ctx context.Context, a model.Artifact) bool {
	info, err := os.Stat(a.Path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	if a.Size > 0 && info.Size() != a.Size {
		return false
	}

	if a.Checksum != nil {
		digest, err := hashFile(a.Path, a.Checksum.Algorithm)
		if err != nil {
			log.Debugf("hashing existing %s: %v", a.Path, err)
			return false
		}
		return a.Checksum.Matches(digest)
	}

	if a.Size > 0 {
		return true
	}

	remote, err := f.source.GetFileSize(ctx, a.URL)
	if err != nil {
		log.Debugf("probing size of %s: %v", a.URL, err)
		return false
	}
	return remote == info.Size()
}
