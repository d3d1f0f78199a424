package utils

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	hashPrefixLength = 8
	defaultExtension = ".bin"
)

// AttachmentName builds the download file name from the first characters
// of hash and the extension sniffed from the payload head. Anything that is
// not a recognised binary format is named ".bin".
func AttachmentName(hash string, head []byte) string {
	prefix := hash
	if len(prefix) > hashPrefixLength {
		prefix = prefix[:hashPrefixLength]
	}

	return prefix + ExtensionFromContent(head)
}

func ExtensionFromContent(head []byte) string {
	if len(head) == 0 {
		return defaultExtension
	}

	detected := mimetype.Detect(head)

	// text/plain and everything under it is named .bin.
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/plain") {
			return defaultExtension
		}
	}

	if ext := detected.Extension(); ext != "" {
		return ext
	}

	return defaultExtension
}
