package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const shareTokenBytes = 32

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newShareToken returns a bearer secret with no relation to any resource data.
func newShareToken() (string, error) {
	bytes := make([]byte, shareTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func wellFormedShareToken(token string) bool {
	if len(token) != shareTokenBytes*2 {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
