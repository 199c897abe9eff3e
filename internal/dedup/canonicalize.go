package dedup

import (
	"net/netip"
	"regexp"
	"strings"
)

// leadingZeroOctet matches a run of leading zeros at the start of a
// dotted-decimal octet (or of a prefix length), which netip rejects.
var leadingZeroOctet = regexp.MustCompile(`(^|[./])0+(\d)`)

// canonicalize reduces s to a normalized form for network-aware
// equivalence: leading zeros are stripped from dotted-decimal octets,
// hexadecimal groups in colon notation are lowercased, the longest run
// of zero groups is collapsed, and a trailing /0-equivalent CIDR suffix
// is removed when the address class implies it. Strings that do not
// parse as a network address or prefix are compared literally (trimmed
// of surrounding whitespace only).
func canonicalize(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return trimmed
	}

	candidate := leadingZeroOctet.ReplaceAllString(trimmed, "$1$2")

	if prefix, err := netip.ParsePrefix(candidate); err == nil {
		if prefix.Bits() == prefix.Addr().BitLen() {
			return prefix.Addr().String()
		}
		return prefix.String()
	}

	if addr, err := netip.ParseAddr(candidate); err == nil {
		return addr.String()
	}

	return trimmed
}
