package storage

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrFileTooLarge is returned by DetectImage when data exceeds the limit.
var ErrFileTooLarge = fmt.Errorf("file too large")

// DetectImage sniffs the content type of data and returns it together with a
// file extension, rejecting anything over maxBytes, any non-image, or a type
// outside allowed (when allowed is non-empty).
func DetectImage(data []byte, maxBytes int64, allowed []string) (mime, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("empty file")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", "", ErrFileTooLarge
	}
	detected := mimetype.Detect(data)
	mime = detected.String()
	if !strings.HasPrefix(mime, "image/") {
		return "", "", fmt.Errorf("unsupported content type %s", mime)
	}
	if len(allowed) > 0 {
		ok := false
		for _, a := range allowed {
			if detected.Is(a) {
				ok = true
				break
			}
		}
		if !ok {
			return "", "", fmt.Errorf("unsupported content type %s", mime)
		}
	}
	return mime, detected.Extension(), nil
}
