// Package download implements the cover fetch pipeline.
//
// # Pipeline
//
// The Pipeline coordinates a run end to end:
//
//  1. Validate the collection against the registry
//  2. List every asset minted under the collection
//  3. Fetch metadata and resolve a CID per asset, concurrently
//  4. Keep the first CIDs that are neither on disk nor already picked
//  5. Download the selected covers
//
// # Basic Usage
//
//	pipeline := download.New(settings, log, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	files, err := pipeline.Fetch(ctx, download.Request{
//	    CollectionID: "c4a0...",
//	    OutDir:       "covers",
//	    Count:        10,
//	    Resolution:   model.High,
//	})
//
// # Concurrency
//
// Metadata lookups run on a pool bounded by Options.Workers. As soon as
// enough CIDs have been accepted the pool is cancelled and late results are
// dropped, so the covers chosen depend on completion order.
//
// Downloads are sequential unless Options.DownloadWorkers is above one.
// In both modes the first failed download aborts the run and the covers
// written so far are returned with the error.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Counters are available at any time through Pipeline.Progress.
package download
