package device

import (
	"fmt"
	"strings"
)

// Kind names one of the closed set of device variants.
type Kind string

const (
	KindSmartwatch       Kind = "Smartwatch"
	KindPersonalComputer Kind = "PersonalComputer"
	KindEmbeddedDevice   Kind = "EmbeddedDevice"
)

// Kinds lists every variant in a stable order.
var Kinds = []Kind{KindSmartwatch, KindPersonalComputer, KindEmbeddedDevice}

// Tag is the short prefix used by the line format, e.g. "SW" in "SW-1,...".
func (k Kind) Tag() string {
	switch k {
	case KindSmartwatch:
		return "SW"
	case KindPersonalComputer:
		return "P"
	case KindEmbeddedDevice:
		return "ED"
	}
	return ""
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind resolves a kind name or tag, case-insensitively. "pc" is
// accepted as an alias for personal computers.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smartwatch", "sw":
		return KindSmartwatch, nil
	case "personalcomputer", "pc", "p":
		return KindPersonalComputer, nil
	case "embeddeddevice", "ed":
		return KindEmbeddedDevice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// kindFromTag only accepts the exact upper-case tags written by String.
func kindFromTag(tag string) (Kind, error) {
	for _, k := range Kinds {
		if k.Tag() == tag {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: tag %q", ErrUnknownKind, tag)
}
