package app

import (
	"crypto/rand"
	"math/big"
)

const (
	digits   = "0123456789"
	alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	codeLength  = 6
	tokenLength = 6
)

// randomString draws length characters independently and uniformly from
// alphabet. Codes are not guaranteed unique across users or time;
// collision at this length is statistically negligible.
func randomString(alphabet string, length int) string {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// genCode returns a numeric one-time verification code.
func genCode() string {
	return randomString(digits, codeLength)
}

// genToken returns the short random segment of a stored blob name.
func genToken() string {
	return randomString(alphanum, tokenLength)
}
