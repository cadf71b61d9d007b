package runtimeconfig

import (
	"encoding/base64"
	"strings"
)

const appKeyPrefix = "base64:"

// DecodeAppKey returns the raw bytes of a configured app key. Keys may carry
// a "base64:" prefix.
func DecodeAppKey(value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), appKeyPrefix)
	return base64.StdEncoding.DecodeString(trimmed)
}

func validAppKey(value string) bool {
	key, err := DecodeAppKey(value)
	return err == nil && len(key) == 32
}
