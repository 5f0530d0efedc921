package sms

import (
	"fmt"
	"unicode/utf8"

	"github.com/gobapps/gob-api/internal/utils"
)

const (
	// SegmentThreshold is the longest reply sent as a single message.
	SegmentThreshold = 1600
	// SegmentLimit bounds every segment, prefix included.
	SegmentLimit = 1500
	// room for "Partie nn/nn\n"
	prefixReserve = 16
)

var segmentChunker = utils.NewChunker(SegmentLimit - prefixReserve)

// Segment splits long replies on natural boundaries and numbers the parts.
func Segment(text string) []string {
	if utf8.RuneCountInString(text) <= SegmentThreshold {
		return []string{text}
	}
	parts := segmentChunker.Split(text)
	if len(parts) <= 1 {
		return parts
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = fmt.Sprintf("Partie %d/%d\n%s", i+1, len(parts), p)
	}
	return out
}
