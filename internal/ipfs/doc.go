// Package ipfs downloads cover images from an IPFS HTTP gateway and
// writes them to disk.
//
// Example:
//
//	store := ipfs.NewClient(settings.Endpoints(), ipfs.Options{}, log)
//	path, err := store.DownloadCover(ctx, "QmX", "/covers/abc123-high-")
//	// path == "/covers/abc123-high-QmX.png"
package ipfs
