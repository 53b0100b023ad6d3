package auth

import (
	"crypto/rand"
	"math/big"
)

const (
	resetCodeLength  = 8
	resetCodeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateResetCode produces an 8-character alphanumeric one-time code.
func GenerateResetCode() (string, error) {
	code := make([]byte, resetCodeLength)
	max := big.NewInt(int64(len(resetCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = resetCodeCharset[n.Int64()]
	}
	return string(code), nil
}
