// Package ioutils provides file system utilities for judge-a-book.
//
// This package contains functions for:
//   - Directory creation
//   - File writing
//   - Discovering covers already downloaded into an output directory
package ioutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/judgeabook/judge-a-book/internal/model"
)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ExistingCovers returns the CIDs of covers already written under prefix.
//
// prefix is the value built by model.CoverPrefix; its directory is listed
// and every entry named <prefix><cid>.png contributes <cid>. Entries of
// other collections or resolutions share the directory and are ignored.
//
// Example:
//
//	prefix := model.CoverPrefix("/covers", "abc123", model.High)
//	existing, err := ExistingCovers(prefix)
//	// "/covers/abc123-high-QmX.png" -> existing["QmX"]
func ExistingCovers(prefix string) (map[string]struct{}, error) {
	dir, base := filepath.Split(prefix)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	existing := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rest, ok := strings.CutPrefix(entry.Name(), base)
		if !ok {
			continue
		}
		cid, ok := strings.CutSuffix(rest, model.CoverExtension)
		if !ok || cid == "" {
			continue
		}
		existing[cid] = struct{}{}
	}
	return existing, nil
}
