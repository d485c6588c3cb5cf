package baichuan

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"fmt"
)

// Mode identifies the encryption applied to a message's Extension+Payload
// region.
type Mode int

const (
	ModeNone Mode = iota
	ModeXOR
	ModeAES
)

// xorKey is the fixed 8-byte keystream seed used by the BCEncrypt mode.
// Cameras from before the AES rollout use this exclusively; modern
// cameras use it only for the pre-login legacy handshake.
var xorKey = [8]byte{0x1F, 0x2D, 0x3C, 0x4B, 0x5A, 0x69, 0x78, 0xFF}

// aesIV is the fixed CFB initialization vector shared by all AES-mode
// sessions; only the key is session-derived.
var aesIV = []byte("0123456789abcdef")

// XOR applies (or reverses, XOR being self-inverse) the BCEncrypt
// keystream to buf, keyed by the header's encryption-offset field.
func XOR(encOffset uint32, buf []byte) []byte {
	if len(buf) == 0 {
		return buf
	}
	out := make([]byte, len(buf))
	start := int(encOffset % 8)
	off := byte(encOffset)
	for i, b := range buf {
		out[i] = b ^ xorKey[(start+i)%8] ^ off
	}
	return out
}

// AESKey derives the AES-CFB-128 session key from the camera-issued
// nonce and the account password, matching the camera's own derivation:
// MD5("<nonce>-<password>") truncated to 16 bytes.
func AESKey(nonce, password string) []byte {
	sum := md5HexUpper(nonce + "-" + password)
	return []byte(sum[:16])
}

// AESEncrypt encrypts body under key with the fixed session IV.
func AESEncrypt(key, body []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("baichuan: aes cipher: %w", err)
	}
	out := make([]byte, len(body))
	cipher.NewCFBEncrypter(block, aesIV).XORKeyStream(out, body)
	return out, nil
}

// AESDecrypt decrypts data under key with the fixed session IV.
func AESDecrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("baichuan: aes cipher: %w", err)
	}
	out := make([]byte, len(data))
	cipher.NewCFBDecrypter(block, aesIV).XORKeyStream(out, data)
	return out, nil
}

// md5HexUpper matches the camera's own hash formatting: uppercase hex,
// truncated to 31 characters (the trailing nibble is always dropped).
func md5HexUpper(s string) string {
	sum := md5.Sum([]byte(s))
	return fmt.Sprintf("%X", sum[:])[:31]
}

// HashCredential returns the login-handshake hash for a username or
// password combined with the camera's nonce: MD5(value+nonce), uppercase.
func HashCredential(value, nonce string) string {
	return md5HexUpper(value + nonce)
}
