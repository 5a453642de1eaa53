package essay

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file contents to a string and reports the encoding
// it assumed. Files with a BOM follow the BOM, valid UTF-8 passes
// through, and anything else is read as Windows-1252, which is what older
// scraped essays were saved in.
func Decode(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return string(data[len(utf8BOM):]), "utf-8", nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeWith(data, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeWith(data, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes)
	case utf8.Valid(data):
		return string(data), "utf-8", nil
	default:
		return decodeWith(data, "windows-1252", charmap.Windows1252.NewDecoder().Bytes)
	}
}

func decodeWith(data []byte, name string, fn func([]byte) ([]byte, error)) (string, string, error) {
	out, err := fn(data)
	if err != nil {
		return "", name, fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}
