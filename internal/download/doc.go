// Package download fetches batches of dataset files to local storage.
//
// # Manager
//
// The Manager is the batch fetcher:
//
//  1. Derive URL and local name per token (or take them as given)
//  2. Create the destination directory
//  3. Fetch every item, one at a time by default
//  4. Record a Result per item; failures never stop the batch
//  5. List the destination directory
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	results, err := manager.FetchTemplate(ctx, settings.Template, []string{"1965", "1966"})
//	if err != nil {
//	    log.Fatal(err) // batch-level problem, nothing fetched
//	}
//	for _, r := range results {
//	    fmt.Println(r.LocalName, r.Status)
//	}
//	entries, _ := manager.List()
//
// # Writes
//
// Each file is streamed into a temporary file in the destination directory
// and renamed over the final name on success, so a failed item never leaves
// a truncated artifact and an existing file is only replaced by a complete one.
//
// # Concurrency
//
// settings.MaxConcurrentDownloads defaults to 1, which fetches strictly in
// input order. Larger values fetch that many items at once; Results keep
// input order either way.
//
// # Retry Logic
//
// settings.DownloadMaxRetries defaults to 0. When set, network failures are
// retried with exponential backoff (DownloadRetryCooldown *
// DownloadRetryExponent^try seconds). Not-found and local write failures are
// never retried.
package download
