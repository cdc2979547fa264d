package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/judgeabook/judge-a-book/internal/model"
)

// ChunkedString decodes a metadata string that may be split into chunks.
//
// On-chain metadata strings are limited to 64 bytes, so long references
// are often published as arrays:
//
//	"src": ["ipfs://QmRtaUc7FYQvijR3FHDtyu5M1P", "Xfp6NCJmN4gG8jmEJgpj"]
//
// The chunks are concatenated in order.
type ChunkedString string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (cs *ChunkedString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*cs = ChunkedString(s)
		return nil
	}

	var chunks []string
	if err := json.Unmarshal(data, &chunks); err != nil {
		return fmt.Errorf("expected string or array of strings, got %s", data)
	}
	*cs = ChunkedString(strings.Join(chunks, ""))
	return nil
}

// AssetResponse is the body of a single asset lookup.
type AssetResponse struct {
	Asset           string           `json:"asset"`
	PolicyID        string           `json:"policy_id"`
	OnchainMetadata *OnchainMetadata `json:"onchain_metadata"`
}

// OnchainMetadata is the CIP-25 metadata published with a book edition.
type OnchainMetadata struct {
	Name  ChunkedString  `json:"name"`
	Image ChunkedString  `json:"image"`
	Files []MetadataFile `json:"files"`
}

// MetadataFile is one entry of the metadata's files list.
type MetadataFile struct {
	Name      ChunkedString `json:"name"`
	MediaType ChunkedString `json:"mediaType"`
	Src       ChunkedString `json:"src"`
}

// ToAssetMetadata converts the response to the model used by the resolver.
// It returns nil when the asset carries no on-chain metadata.
func (r *AssetResponse) ToAssetMetadata() *model.AssetMetadata {
	if r == nil || r.OnchainMetadata == nil {
		return nil
	}

	meta := &model.AssetMetadata{
		Image: string(r.OnchainMetadata.Image),
		Files: make([]model.MetadataFile, 0, len(r.OnchainMetadata.Files)),
	}
	for _, f := range r.OnchainMetadata.Files {
		meta.Files = append(meta.Files, model.MetadataFile{
			Name: string(f.Name),
			Src:  string(f.Src),
		})
	}
	return meta
}
