// Package http provides the HTTP client shared by the chain API and IPFS
// gateway clients.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Static per-request API key headers (sent with their exact spelling)
//   - Non-2xx statuses reported as *StatusError carrying the status text
//   - JSON decoding and in-memory downloads with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(time.Minute, "judge-a-book/dev")
//
//	var body dto.CollectionsResponse
//	err := client.GetJSON(ctx, collectionsURL, nil, &body)
//
//	var status *http.StatusError
//	if errors.As(err, &status) {
//	    fmt.Println(status.StatusCode)
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
