// Package model defines the data shared by the chain client, the CID
// resolver and the fetch pipeline.
//
// # Assets
//
// AssetMetadata is the decoded on-chain metadata of one book edition:
//
//	meta := &model.AssetMetadata{
//	    Image: "ipfs://QmLow",
//	    Files: []model.MetadataFile{
//	        {Name: model.HighResFileName, Src: "ipfs://QmHigh"},
//	    },
//	}
//
// # Resolution
//
// Resolution is the closed High/Low tag chosen once per run:
//
//	res, err := model.ParseResolution("lo") // model.Low
//
// # Cover Paths
//
// Covers are written to CoverPath(prefix, cid), where the prefix is built
// from the output directory, collection and resolution:
//
//	prefix := model.CoverPrefix("/covers", "abc123", model.High)
//	model.CoverPath(prefix, "QmX") // "/covers/abc123-high-QmX.png"
//
// # Results
//
// Result is the structured success/failure record reported to callers.
package model
