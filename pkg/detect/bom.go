package detect

import (
	"bytes"
)

// byteOrderMark pairs a BOM prefix with the label it implies
type byteOrderMark struct {
	prefix []byte
	label  string
}

// boms is ordered longest first so that a UTF-32 LE mark (FF FE 00 00)
// is not mistaken for the UTF-16 LE mark it starts with
var boms = []byteOrderMark{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, label: "utf8"},
	{prefix: []byte{0x00, 0x00, 0xFE, 0xFF}, label: "utf32be"},
	{prefix: []byte{0xFF, 0xFE, 0x00, 0x00}, label: "utf32le"},
	{prefix: []byte{0xFE, 0xFF}, label: "utf16be"},
	{prefix: []byte{0xFF, 0xFE}, label: "utf16le"},
}

// DetectBOM returns the encoding implied by a leading byte-order mark.
// The second return value is false when data has no recognized BOM.
func DetectBOM(data []byte) (string, bool) {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom.prefix) {
			return bom.label, true
		}
	}
	return "", false
}
