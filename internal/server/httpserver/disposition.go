package httpserver

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/megadl/internal/common"
)

// contentDisposition builds an attachment header for name (RFC 6266).
//
// Printable ASCII names are sent as a quoted filename. Other names get an
// ASCII fallback with '?' substitutions plus a filename* parameter carrying
// the UTF-8 name percent-encoded per RFC 5987.
func contentDisposition(name string) string {
	if name == "" || !utf8.ValidString(name) {
		name = common.FallbackFileName
	}

	header := `attachment; filename="` + quoteFallback(name) + `"`
	if !isPrintableASCII(name) {
		header += "; filename*=UTF-8''" + encodeRFC5987(name)
	}
	return header
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func quoteFallback(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// attr-char from RFC 5987 besides ALPHA and DIGIT.
const attrPunct = "!#$&+-.^_`|~"

func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || strings.IndexByte(attrPunct, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
