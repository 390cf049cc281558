package detect

import (
	"strings"

	"github.com/sdejongh/utfnorris/pkg/transcode"
)

// supportedEncodings is the conversion allow-list, keyed by lowercase label
var supportedEncodings = map[string]bool{
	"utf8":         true,
	"utf-8":        true,
	"utf16le":      true,
	"utf16be":      true,
	"utf-16le":     true,
	"utf-16be":     true,
	"gb2312":       true,
	"gbk":          true,
	"gb18030":      true,
	"big5":         true,
	"big5-hkscs":   true,
	"shift_jis":    true,
	"euc-jp":       true,
	"euc-kr":       true,
	"iso-8859-1":   true,
	"iso-8859-2":   true,
	"iso-8859-5":   true,
	"windows-1250": true,
	"windows-1251": true,
	"windows-1252": true,
	"ascii":        true,
}

var displayNames = map[string]string{
	"utf8":         "UTF-8",
	"utf-8":        "UTF-8",
	"utf16le":      "UTF-16 LE",
	"utf16be":      "UTF-16 BE",
	"utf-16le":     "UTF-16 LE",
	"utf-16be":     "UTF-16 BE",
	"utf32le":      "UTF-32 LE",
	"utf32be":      "UTF-32 BE",
	"gb2312":       "GB2312",
	"gbk":          "GBK",
	"gb18030":      "GB18030",
	"big5":         "Big5",
	"big5-hkscs":   "Big5-HKSCS",
	"shift_jis":    "Shift_JIS",
	"euc-jp":       "EUC-JP",
	"euc-kr":       "EUC-KR",
	"iso-8859-1":   "ISO-8859-1",
	"iso-8859-2":   "ISO-8859-2",
	"iso-8859-5":   "ISO-8859-5",
	"windows-1250": "Windows-1250",
	"windows-1251": "Windows-1251",
	"windows-1252": "Windows-1252",
	"ascii":        "ASCII",
	"unknown":      "Unknown encoding",
}

// aliases maps detector spellings onto allow-list labels
var aliases = map[string]string{
	"gb-18030":    "gb18030",
	"us-ascii":    "ascii",
	"shift-jis":   "shift_jis",
	"sjis":        "shift_jis",
	"eucjp":       "euc-jp",
	"euckr":       "euc-kr",
	"latin1":      "iso-8859-1",
	"cp1250":      "windows-1250",
	"cp1251":      "windows-1251",
	"cp1252":      "windows-1252",
	"big5hkscs":   "big5-hkscs",
	"utf-32le":    "utf32le",
	"utf-32be":    "utf32be",
	"iso_8859-1":  "iso-8859-1",
	"iso_8859-2":  "iso-8859-2",
	"iso_8859-5":  "iso-8859-5",
	"windows1252": "windows-1252",
}

// NormalizeLabel lowercases a detector label and maps known aliases
// onto the spelling used by the allow-list
func NormalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := aliases[l]; ok {
		return canonical
	}
	return l
}

// IsSupported checks the label against the allow-list, ignoring case
func IsSupported(label string) bool {
	return supportedEncodings[strings.ToLower(label)]
}

// NeedsConversion returns false when the file is already UTF-8
func NeedsConversion(label string) bool {
	return !transcode.IsUTF8(label)
}

// DisplayName returns a human-friendly name for the label
func DisplayName(label string) string {
	if name, ok := displayNames[strings.ToLower(label)]; ok {
		return name
	}
	return label
}

// SupportedEncodings returns the allow-list in a stable order
func SupportedEncodings() []string {
	return []string{
		"utf8", "utf-8",
		"utf16le", "utf16be", "utf-16le", "utf-16be",
		"gb2312", "gbk", "gb18030",
		"big5", "big5-hkscs",
		"shift_jis", "euc-jp",
		"euc-kr",
		"iso-8859-1", "iso-8859-2", "iso-8859-5",
		"windows-1250", "windows-1251", "windows-1252",
		"ascii",
	}
}
