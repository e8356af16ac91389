// Package meta retrieves version catalogs and per-version metadata from
// Quilt Meta and Mojang's version manifest.
//
// The package covers:
//
//  1. The game version catalog (/v3/versions/game)
//  2. The loader version catalog (/v3/versions/loader)
//  3. Launch profile documents for the client installer
//  4. Server launcher and vanilla server jar locations for the server installer
//
// # Catalogs
//
//	client := meta.NewClient(http.NewClient())
//	games, err := client.FetchPlatformVersions(ctx)
//	if errors.Is(err, model.ErrEmptyCatalog) {
//	    // the feed answered but listed nothing
//	}
//
// Catalogs keep the remote order. The feeds are published newest-first and
// selection relies on that; the client does not re-sort.
//
// # Retries
//
// No request in this package is retried. Metadata must be correct more than
// it must be available, so a failing or empty feed surfaces immediately.
package meta
