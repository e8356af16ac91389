// Package fetch downloads installation artifacts to disk.
//
// # Fetcher
//
// A Fetcher takes model.Artifact values (URL, destination, optional
// checksum and size) and makes each destination hold exactly the expected
// bytes:
//
//  1. Skip the artifact if the destination already matches
//  2. Stream the body into a hidden staging file next to the destination
//  3. Verify size and checksum
//  4. Rename the staging file into place
//
// # Basic Usage
//
//	fetcher := fetch.NewFetcher(http.NewClient(), fetch.DefaultOptions())
//
//	err := fetcher.Fetch(ctx, model.Artifact{
//	    URL:  "https://meta.quiltmc.org/v3/versions/loader/1.20.4/0.23.1/server/jar",
//	    Path: "/srv/minecraft/quilt-server-launch.jar",
//	})
//
// # Concurrency
//
// FetchAll runs at most limit fetches at once. The first failure cancels
// the rest and is returned after every started fetch has stopped.
//
// # Retry Logic
//
// Transport failures and 5xx, 408 and 429 responses are retried with
// exponential backoff. Other 4xx responses, checksum mismatches and
// filesystem errors fail immediately.
package fetch
