// Package resolver maps decoded asset metadata to the IPFS content
// identifier of its cover for a requested resolution.
//
// ResolveCID is pure: it never performs I/O, never panics, and reports a
// miss as ok == false rather than as an error.
//
//	cid, ok := resolver.ResolveCID(meta, model.High)
//	if !ok {
//	    // asset has no high resolution cover on IPFS
//	}
package resolver

import (
	"strings"

	"github.com/judgeabook/judge-a-book/internal/model"
)

// ResolveCID returns the CID of meta's cover for res.
//
// High resolution takes the first file named model.HighResFileName whose
// source is an ipfs:// reference. Low resolution takes the primary image.
// Nil metadata, missing fields and non-IPFS references all yield ok == false.
func ResolveCID(meta *model.AssetMetadata, res model.Resolution) (string, bool) {
	if meta == nil {
		return "", false
	}

	switch res {
	case model.High:
		return highResCID(meta.Files)
	case model.Low:
		return stripScheme(meta.Image)
	}
	return "", false
}

func highResCID(files []model.MetadataFile) (string, bool) {
	for _, file := range files {
		if file.Name != model.HighResFileName {
			continue
		}
		if cid, ok := stripScheme(file.Src); ok {
			return cid, true
		}
	}
	return "", false
}

// stripScheme removes the ipfs:// prefix. An empty remainder is a miss.
func stripScheme(ref string) (string, bool) {
	cid, ok := strings.CutPrefix(ref, model.IPFSScheme)
	if !ok || cid == "" {
		return "", false
	}
	return cid, true
}
