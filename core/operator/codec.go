package operator

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Format identifies the encoding of a command payload.
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
	// FormatFrame is the raw two byte [code, value] frame.
	FormatFrame
)

func (f Format) String() string {
	switch f {
	case FormatCBOR:
		return "cbor"
	case FormatFrame:
		return "frame"
	default:
		return "json"
	}
}

// ParseFormat maps a configuration value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	case "frame":
		return FormatFrame, nil
	default:
		return FormatJSON, fmt.Errorf("unknown encoding %q", s)
	}
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("operator: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// isCBORMap reports whether b starts with a CBOR map header (major type 5).
func isCBORMap(b []byte) bool {
	return len(b) > 0 && b[0]>>5 == 5
}
