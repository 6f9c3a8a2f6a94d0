package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string, so the final string length will be
// twice the size.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// MakeRandDigitString generates a random string of decimal digits of the
// given length, suitable for one-time verification codes.
func MakeRandDigitString(size int) (string, error) {
	var sb strings.Builder
	for i := 0; i < size; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing sensitive data such as passwords from memory
// after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// GenerateRandByteArray returns a slice of n random bytes.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
