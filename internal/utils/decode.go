package utils

import (
	"golang.org/x/text/encoding/unicode"
)

// DecodePermissive converts raw file bytes into a UTF-8 string.
// Invalid byte sequences are replaced with U+FFFD instead of failing the read.
// A leading UTF-8 byte order mark is preserved as content.
func DecodePermissive(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	decoded, decodeError := unicode.UTF8.NewDecoder().Bytes(data)
	if decodeError != nil {
		return string([]rune(string(data)))
	}
	return string(decoded)
}
