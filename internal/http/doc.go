// Package http provides the HTTP GET capability used by the installer engine.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Idle timeouts: dialing, response headers and each pause between body
//     reads are bounded, the length of a transfer is not
//   - Classifying failures as transient or permanent
//   - Streaming bodies and HEAD size probes
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch a JSON feed
//	var feed []dto.LoaderVersion
//	err := client.GetJSON(ctx, "https://meta.quiltmc.org/v3/versions/loader", &feed)
//
//	// Stream an artifact
//	body, size, err := client.Open(ctx, url)
//
// # Errors
//
// Non-200 responses are returned as *StatusError. IsTransient tells the
// retry layer whether a failure is worth another attempt:
//
//	if http.IsTransient(err) {
//	    // 5xx, 408, 429, stalls, timeouts, connection resets
//	}
package http
