package model

const (
	// HighResFileName is the file descriptor name that marks a book's
	// high resolution cover in its on-chain metadata.
	HighResFileName = "High-Res Cover Image"

	// IPFSScheme prefixes every image reference served from IPFS.
	IPFSScheme = "ipfs://"
)

// AssetMetadata is the decoded on-chain metadata of a single asset.
//
// Only the fields needed to locate a cover are kept. A value is built once
// per asset by the chain client and never modified afterwards.
type AssetMetadata struct {
	// Image is the primary (low resolution) image reference,
	// normally "ipfs://<cid>".
	Image string

	// Files lists the named file descriptors in their on-chain order.
	Files []MetadataFile
}

// MetadataFile is one named entry of an asset's file list.
type MetadataFile struct {
	Name string
	Src  string
}
