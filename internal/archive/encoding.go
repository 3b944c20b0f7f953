package archive

import (
	"bytes"
	"unicode/utf8"

	"github.com/Belphemur/titlovi/internal/config"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NormalizeEncoding returns content as UTF-8. Valid UTF-8 only loses its BOM;
// anything else is decoded from the fallback charset, windows-1250 when the
// label is empty or unknown. Most catalog uploads predate UTF-8 and use the
// Central European code page.
func NormalizeEncoding(content []byte, fallback string) []byte {
	if utf8.Valid(content) {
		return bytes.TrimPrefix(content, utf8BOM)
	}

	enc := lookupEncoding(fallback)
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("charset", fallback).Msg("Failed to decode subtitle, keeping original bytes")
		return content
	}
	return decoded
}

func lookupEncoding(label string) encoding.Encoding {
	if label != "" {
		if enc, _ := charset.Lookup(label); enc != nil {
			return enc
		}
		logger := config.GetLogger()
		logger.Warn().Str("charset", label).Msg("Unknown charset, using windows-1250")
	}
	return charmap.Windows1250
}
