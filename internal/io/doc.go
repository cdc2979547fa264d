// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Directory creation and file writing
//   - Finding covers already present in an output directory
//   - Cover image probing and resizing
//
// # Existing Covers
//
// Covers are named <outdir>/<collection>-<resolution>-<cid>.png. The CIDs
// already on disk for one collection and resolution are recovered with:
//
//	prefix := model.CoverPrefix(outDir, collectionID, model.High)
//	existing, err := ioutils.ExistingCovers(prefix)
//
// # Image Processing
//
// The ImageService handles cover manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Identify a downloaded cover
//	info, _ := svc.Probe(coverData)
//
//	// Resize to fit within 1000x1000
//	resized, _ := svc.FitPNG(ctx, coverData, 1000, 1000)
package ioutils
