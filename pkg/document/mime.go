package document

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// sniffPrefixChars is how much of the base64 string is decoded; it covers
// the longest signature checked below (12 bytes for WEBP).
const sniffPrefixChars = 20

// SniffImageMIME detects the image type of base64 data from its file signature.
// Data that decodes but matches no known signature is reported as JPEG.
// It returns false when the prefix is not valid base64.
func SniffImageMIME(b64 string) (string, bool) {
	prefix := strings.TrimSpace(b64)
	if len(prefix) > sniffPrefixChars {
		prefix = prefix[:sniffPrefixChars]
	}
	data, err := base64.StdEncoding.DecodeString(prefix)
	if err != nil || len(data) == 0 {
		return "", false
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png", true
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg", true
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif", true
	case bytes.HasPrefix(data, []byte("BM")):
		return "image/bmp", true
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WEBP":
		return "image/webp", true
	}
	return "image/jpeg", true
}
