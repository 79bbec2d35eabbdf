package orders

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Decode returns the export as UTF-8 along with the detected encoding.
// Exports saved by spreadsheet tools arrive as UTF-8 (with or without BOM),
// UTF-16 with BOM, or Windows-1250 for the Czech locale.
func Decode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}
	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], "utf-8-bom", nil
	}
	if hasUTF16BOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, "", fmt.Errorf("orders: decode utf-16: %w", err)
		}
		return out, "utf-16", nil
	}
	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	out, _, err := transform.Bytes(charmap.Windows1250.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("orders: decode windows-1250: %w", err)
	}
	return out, "windows-1250", nil
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
