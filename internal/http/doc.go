// Package http provides the HTTP client used to fetch dataset files from
// geodatabase servers.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Streaming downloads with progress tracking
//   - File size retrieval via HEAD requests
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(10 * time.Minute))
//
//	n, err := client.Download(ctx, url, file, nil)
//	if http.IsNotFound(err) {
//	    // the file for this token was never published
//	}
//
// # Errors
//
// Non-200 responses are returned as *StatusError. Failures of the
// destination writer are returned as *WriteError so callers can tell a full
// disk from a broken connection.
package http
