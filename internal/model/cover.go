package model

import "strings"

// CoverExtension is appended to every downloaded cover's CID.
const CoverExtension = ".png"

// CoverPrefix builds the path prefix shared by every cover of one
// collection and resolution inside outDir.
//
// Example:
//
//	CoverPrefix("/covers/", "abc123", High) // "/covers/abc123-high-"
func CoverPrefix(outDir, collectionID string, res Resolution) string {
	return strings.TrimRight(outDir, "/") + "/" + collectionID + "-" + res.String() + "-"
}

// CoverPath returns the file a cover with the given CID is written to.
func CoverPath(prefix, cid string) string {
	return prefix + cid + CoverExtension
}
