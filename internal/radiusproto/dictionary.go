package radiusproto

// Vendor IDs for the two vendor-specific-attribute spaces radiusd
// understands.
const (
	VendorMicrosoft = 311
	VendorMikrotik  = 14988
)

// Microsoft VSA sub-attribute types (RFC 2433 / RFC 2759).
const (
	MSCHAPResponse     = 1
	MSCHAPError        = 2
	MSCHAPChallenge    = 11
	MSCHAP2Response    = 25
	MSCHAP2Success     = 26
)

// MikroTik VSA sub-attribute types.
const (
	MikrotikGroup      = 3
	MikrotikRateLimit  = 8
)

// attrName maps a standard RADIUS attribute code to the name used in logs.
// Unknown codes are simply omitted, so AttributeName returns "" for them.
var attrName = map[uint8]string{
	1:  "User-Name",
	2:  "User-Password",
	3:  "CHAP-Password",
	4:  "NAS-IP-Address",
	5:  "NAS-Port",
	6:  "Service-Type",
	7:  "Framed-Protocol",
	8:  "Framed-IP-Address",
	11: "Filter-Id",
	26: "Vendor-Specific",
	27: "Session-Timeout",
	30: "Called-Station-Id",
	31: "Calling-Station-Id",
	32: "NAS-Identifier",
	40: "Acct-Status-Type",
	42: "Acct-Input-Octets",
	43: "Acct-Output-Octets",
	44: "Acct-Session-Id",
	46: "Acct-Session-Time",
	49: "Acct-Terminate-Cause",
	52: "Acct-Input-Gigawords",
	53: "Acct-Output-Gigawords",
	60: "CHAP-Challenge",
}

// AttributeName returns the dictionary name for a standard attribute code,
// or the empty string if the code is not one radiusd's auth/acct paths
// need to know by name.
func AttributeName(code uint8) string {
	return attrName[code]
}

// vendorAttrName names vendor sub-attributes, keyed by (vendor, type).
var vendorAttrName = map[[2]uint32]string{
	{VendorMicrosoft, MSCHAPResponse}:  "MS-CHAP-Response",
	{VendorMicrosoft, MSCHAPError}:     "MS-CHAP-Error",
	{VendorMicrosoft, MSCHAPChallenge}: "MS-CHAP-Challenge",
	{VendorMicrosoft, MSCHAP2Response}: "MS-CHAP2-Response",
	{VendorMicrosoft, MSCHAP2Success}:  "MS-CHAP2-Success",
	{VendorMikrotik, MikrotikGroup}:     "Mikrotik-Group",
	{VendorMikrotik, MikrotikRateLimit}: "Mikrotik-Rate-Limit",
}

// VendorAttributeName names a vendor sub-attribute, or "" if unknown.
func VendorAttributeName(vendor uint32, vsaType uint8) string {
	return vendorAttrName[[2]uint32{vendor, uint32(vsaType)}]
}
