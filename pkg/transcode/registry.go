package transcode

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// codecs maps every allow-listed label to its codec.
// UTF-16 codecs ignore the BOM; Decode strips a leading U+FEFF instead,
// which keeps encoders from emitting one.
var codecs = map[string]encoding.Encoding{
	"utf8":         unicode.UTF8,
	"utf-8":        unicode.UTF8,
	"utf16le":      unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16be":      unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"gb2312":       simplifiedchinese.GBK,
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"big5":         traditionalchinese.Big5,
	"big5-hkscs":   traditionalchinese.Big5,
	"shift_jis":    japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"euc-kr":       korean.EUCKR,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"iso-8859-5":   charmap.ISO8859_5,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"ascii":        charmap.Windows1252,
}

// Lookup returns the codec registered for label, ignoring case
func Lookup(label string) (encoding.Encoding, error) {
	enc, ok := codecs[strings.ToLower(label)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, label)
	}
	return enc, nil
}

// IsUTF8 reports whether label names UTF-8
func IsUTF8(label string) bool {
	l := strings.ToLower(label)
	return l == "utf8" || l == "utf-8"
}

func isUTF16(label string) bool {
	return strings.HasPrefix(strings.ReplaceAll(strings.ToLower(label), "-", ""), "utf16")
}
