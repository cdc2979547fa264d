// Package chain provides the client for the book collection registry and
// the Blockfrost-compatible chain API.
//
// The package handles three lookups:
//
//  1. Validating that a policy id is a registered book collection
//  2. Listing the asset ids minted under a collection
//  3. Fetching a single asset's on-chain metadata
//
// # Collection Validation
//
//	client := chain.NewClient(settings.Endpoints(), log)
//	ok, err := client.ValidateCollection(ctx, policyID)
//	if err != nil {
//	    return err // registry unreachable or non-2xx
//	}
//
// # Asset Metadata
//
// Metadata lookups never fail; a missing or malformed asset is simply
// not found:
//
//	if meta, ok := client.GetAssetMetadata(ctx, assetID); ok {
//	    cid, _ := resolver.ResolveCID(meta, model.High)
//	}
//
// # Chain API Data Format
//
// Asset metadata follows CIP-25: an "image" reference plus a "files" list
// of {name, mediaType, src}. Long strings may be split into arrays of
// chunks; see dto.ChunkedString. Requests carry the API key in a
// project_id header.
package chain
