package utils

import (
	"math/rand/v2"
	"strings"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SuccessProbability returns a random mission success percentage in
// [1, 100]. Purely decorative: attached to gadget read responses and
// never persisted.
func SuccessProbability() int {
	return rand.IntN(100) + 1
}

// ConfirmationCode returns a 6-character uppercase alphanumeric code
// for the self-destruct sequence. The code is generated at verification
// time and never stored anywhere.
func ConfirmationCode() string {
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < 6; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}
