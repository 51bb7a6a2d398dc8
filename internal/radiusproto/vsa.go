package radiusproto

import "encoding/binary"

// BuildVSA encodes a single vendor-specific-attribute body:
// vendor-id(4) || type(1) || length(1) || value. length counts the type
// and length bytes themselves, per RFC 2865 §5.26. The caller is
// responsible for wrapping the result in a Vendor-Specific (26) attribute.
func BuildVSA(vendor uint32, vsaType uint8, value []byte) []byte {
	out := make([]byte, 4+2+len(value))
	binary.BigEndian.PutUint32(out[0:4], vendor)
	out[4] = vsaType
	out[5] = byte(len(value) + 2)
	copy(out[6:], value)
	return out
}

// ParsedVSA is one decoded vendor sub-attribute.
type ParsedVSA struct {
	Vendor uint32
	Type   uint8
	Value  []byte
}

// ParseVSA decodes the value of a Vendor-Specific (26) attribute into its
// vendor ID and (possibly several, RFC 2865 allows concatenation)
// sub-attributes. Malformed framing or a zero-length sub-attribute value
// is dropped rather than treated as a parse error, per spec.md's boundary
// cases.
func ParseVSA(raw []byte) []ParsedVSA {
	if len(raw) < 4 {
		return nil
	}
	vendor := binary.BigEndian.Uint32(raw[0:4])
	rest := raw[4:]

	var out []ParsedVSA
	for len(rest) >= 2 {
		vsaType := rest[0]
		vsaLen := int(rest[1])
		if vsaLen < 2 || vsaLen > len(rest) {
			break
		}
		value := rest[2:vsaLen]
		if len(value) > 0 {
			out = append(out, ParsedVSA{Vendor: vendor, Type: vsaType, Value: value})
		}
		rest = rest[vsaLen:]
	}
	return out
}

// FindVSA returns the first matching sub-attribute's value among a
// packet's raw Vendor-Specific (26) attribute values, or nil if absent.
func FindVSA(rawAttrs [][]byte, vendor uint32, vsaType uint8) []byte {
	for _, raw := range rawAttrs {
		for _, v := range ParseVSA(raw) {
			if v.Vendor == vendor && v.Type == vsaType {
				return v.Value
			}
		}
	}
	return nil
}
