package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownResolution is returned by ParseResolution for any value other
// than the accepted names and aliases.
var ErrUnknownResolution = errors.New("unknown resolution")

// Resolution is the cover quality tier requested for a run.
//
// The set is closed: High selects the file descriptor named
// HighResFileName, Low selects the asset's primary image.
type Resolution int

const (
	High Resolution = iota
	Low
)

// String returns the lowercase name used in file prefixes and flags.
func (r Resolution) String() string {
	switch r {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution accepts "high", "hi", "low" and "lo", ignoring case.
//
// Example:
//
//	res, err := ParseResolution("hi") // High
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "hi":
		return High, nil
	case "low", "lo":
		return Low, nil
	}
	return 0, fmt.Errorf("%w: %q (want high, hi, low or lo)", ErrUnknownResolution, s)
}
