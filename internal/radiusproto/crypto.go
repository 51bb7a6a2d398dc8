// Package radiusproto supplies the RADIUS attribute dictionary, the
// Microsoft/MikroTik vendor-specific-attribute helpers, and the PPP-era
// crypto primitives (DES, MD4, NT-Hash, MS-CHAPv2) that layeh.com/radius
// itself doesn't know about. Packet decode/encode and the
// Response-Authenticator are left entirely to layeh.com/radius.
package radiusproto

import (
	"crypto/des"
	"crypto/sha1"
	"golang.org/x/crypto/md4"
)

// magicServer and magicPad are the literal RFC 2759 §8.5/§8.7 constants
// used to derive the MS-CHAPv2 Authenticator Response.
const (
	magicServer = "Magic server to client signing constant"
	magicPad    = "Pad to make it do more than one iteration"
)

// NTHash computes the MS-CHAP family credential: MD4 over the UTF-16LE
// encoding of password, with no BOM and no terminator.
func NTHash(password string) []byte {
	utf16le := make([]byte, 0, len(password)*2)
	for _, r := range password {
		utf16le = append(utf16le, byte(r), byte(r>>8))
	}
	h := md4.New()
	h.Write(utf16le)
	return h.Sum(nil)
}

// DesKey7to8 expands a 7-byte DES key material slice into the 8-byte form
// crypto/des expects, per RFC 2759 §8.7's key-expansion description. The
// low bit of every output byte is left as a zero parity placeholder; DES
// itself ignores it.
func DesKey7to8(k7 []byte) []byte {
	k8 := make([]byte, 8)
	k8[0] = k7[0] & 0xFE
	k8[1] = ((k7[0] << 7) | (k7[1] >> 1)) & 0xFE
	k8[2] = ((k7[1] << 6) | (k7[2] >> 2)) & 0xFE
	k8[3] = ((k7[2] << 5) | (k7[3] >> 3)) & 0xFE
	k8[4] = ((k7[3] << 4) | (k7[4] >> 4)) & 0xFE
	k8[5] = ((k7[4] << 3) | (k7[5] >> 5)) & 0xFE
	k8[6] = ((k7[5] << 2) | (k7[6] >> 6)) & 0xFE
	k8[7] = (k7[6] << 1) & 0xFE
	return k8
}

// DesEncrypt3 zero-pads key16 to 21 bytes, DES-ECB encrypts data8 under
// each of the three derived 7-byte key slices, and concatenates the three
// 8-byte ciphertexts into the 24-byte MS-CHAP response.
func DesEncrypt3(key16, data8 []byte) []byte {
	padded := make([]byte, 21)
	copy(padded, key16)

	out := make([]byte, 24)
	for i := 0; i < 3; i++ {
		block, err := des.NewCipher(DesKey7to8(padded[i*7 : i*7+7]))
		if err != nil {
			continue
		}
		block.Encrypt(out[i*8:i*8+8], data8)
	}
	return out
}

// ChallengeHash computes the 8-byte MS-CHAPv2 challenge: the first 8 bytes
// of SHA-1(peerChallenge || authChallenge || username). username is used
// as received — no case folding, no domain stripping.
func ChallengeHash(peerChallenge, authChallenge []byte, username string) []byte {
	h := sha1.New()
	h.Write(peerChallenge)
	h.Write(authChallenge)
	h.Write([]byte(username))
	return h.Sum(nil)[:8]
}

// NTResponse computes the MS-CHAPv2 NT-Response for the given challenges,
// username, and cleartext password.
func NTResponse(authChallenge, peerChallenge []byte, username, password string) []byte {
	challenge := ChallengeHash(peerChallenge, authChallenge, username)
	return DesEncrypt3(NTHash(password), challenge)
}

// AuthenticatorResponse computes the RFC 2759 §8.5 server authenticator
// string (without the "S=" prefix) proving the server also knows the
// password, returned to the client inside MS-CHAP2-Success.
func AuthenticatorResponse(password string, ntResponse, peerChallenge, authChallenge []byte, username string) []byte {
	passwordHashHash := md4Sum(NTHash(password))

	d := sha1.New()
	d.Write(passwordHashHash)
	d.Write(ntResponse)
	d.Write([]byte(magicServer))
	digest := d.Sum(nil)

	challenge := ChallengeHash(peerChallenge, authChallenge, username)

	f := sha1.New()
	f.Write(digest)
	f.Write(challenge)
	f.Write([]byte(magicPad))
	return f.Sum(nil)
}

func md4Sum(data []byte) []byte {
	h := md4.New()
	h.Write(data)
	return h.Sum(nil)
}
