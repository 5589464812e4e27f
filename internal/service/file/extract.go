package file

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// ExtractText returns content as a string when it sniffs as text and is
// valid UTF-8. Anything else yields a placeholder naming the detected type.
func ExtractText(content []byte) string {
	mt := mimetype.Detect(content)
	if isTextual(mt) && utf8.Valid(content) {
		return string(content)
	}
	return fmt.Sprintf("[binary content (%s): text extraction not supported]", baseType(mt))
}

func isTextual(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

func baseType(mt *mimetype.MIME) string {
	s := mt.String()
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return s
}
