package radiusproto

import "layeh.com/radius"

// GetAttr returns the first raw value stored under a standard attribute
// code, or nil if absent. Used for the handful of RFC 2865 attributes
// (CHAP-Password, CHAP-Challenge) this module reads without going through
// a named rfc2865 accessor, the same direct iteration the teacher's
// MS-CHAP VSA extractors use.
func GetAttr(p *radius.Packet, code byte) []byte {
	for _, attr := range p.Attributes {
		if byte(attr.Type) == code {
			return attr.Attribute
		}
	}
	return nil
}

// GetAttrs returns every raw value stored under a standard attribute code,
// in packet order. Multiple instances of a scalar attribute are a
// malformed-but-tolerated case (spec boundary: take first for scalar reads
// via GetAttr; full list available here for VSAs and other list-typed
// attributes).
func GetAttrs(p *radius.Packet, code byte) [][]byte {
	var out [][]byte
	for _, attr := range p.Attributes {
		if byte(attr.Type) == code {
			out = append(out, attr.Attribute)
		}
	}
	return out
}

// GetVendorAttr extracts a single Microsoft/MikroTik-style vendor
// sub-attribute from a packet's Vendor-Specific (26) attributes, or nil if
// none matches.
func GetVendorAttr(p *radius.Packet, vendor uint32, vsaType uint8) []byte {
	return FindVSA(GetAttrs(p, 26), vendor, vsaType)
}
