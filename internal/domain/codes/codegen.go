package codes

import (
	"crypto/rand"
	"fmt"
)

const CodeLength = 12

// codeAlphabet drops ambiguous characters (0/O, 1/I/L) because codes are
// read over the phone and typed from paper.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
