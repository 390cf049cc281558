package transcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUTF8IsIdentityForUTF8(t *testing.T) {
	inputs := [][]byte{
		[]byte("hello"),
		{0xEF, 0xBB, 0xBF, 0x68, 0x69},
		{0xFF, 0xFE, 0xC3}, // not valid UTF-8, still passed through
		[]byte("你好"),
	}

	for _, label := range []string{"utf8", "UTF-8", "utf-8"} {
		for _, in := range inputs {
			res, err := ToUTF8(in, label)
			require.NoError(t, err)
			assert.True(t, res.Reused)
			assert.Equal(t, in, res.Output)
			assert.Same(t, &in[0], &res.Output[0], "output must be the input slice")
		}
	}
}

func TestToUTF8GBK(t *testing.T) {
	res, err := ToUTF8([]byte{0xC4, 0xE3, 0xBA, 0xC3}, "gbk")
	require.NoError(t, err)

	assert.False(t, res.Reused)
	assert.Equal(t, "你好", string(res.Output))
}

func TestToUTF8Idempotent(t *testing.T) {
	first, err := ToUTF8([]byte{0xC4, 0xE3, 0xBA, 0xC3}, "gb18030")
	require.NoError(t, err)

	second, err := ToUTF8(first.Output, "utf8")
	require.NoError(t, err)
	third, err := ToUTF8(second.Output, "utf8")
	require.NoError(t, err)

	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, second.Output, third.Output)
}

func TestRoundTrip(t *testing.T) {
	samples := map[string]string{
		"gbk":          "中文编码测试，你好",
		"gb2312":       "中文编码测试",
		"gb18030":      "中文编码测试 €",
		"big5":         "繁體中文測試",
		"big5-hkscs":   "繁體中文測試",
		"shift_jis":    "日本語のテキスト",
		"euc-jp":       "日本語のテキスト",
		"euc-kr":       "한국어 텍스트",
		"iso-8859-1":   "café naïve",
		"iso-8859-2":   "Zażółć gęślą",
		"iso-8859-5":   "Привет мир",
		"windows-1250": "Příliš žluťoučký kůň",
		"windows-1251": "Привет мир",
		"windows-1252": "“quoted” €5",
		"ascii":        "plain ascii text",
		"utf16le":      "mixed ✓ 你好 😀",
		"utf16be":      "mixed ✓ 你好 😀",
		"utf-16le":     "mixed ✓ 你好 😀",
		"utf-16be":     "mixed ✓ 你好 😀",
	}

	for label, text := range samples {
		t.Run(label, func(t *testing.T) {
			encoded, err := Encode(text, label)
			require.NoError(t, err)

			decoded, err := Decode(encoded, label)
			require.NoError(t, err)
			assert.Equal(t, text, decoded)

			res, err := ToUTF8(encoded, label)
			require.NoError(t, err)
			assert.Equal(t, text, string(res.Output))
		})
	}
}

func TestDecodeStripsUTF16BOM(t *testing.T) {
	le := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	text, err := Decode(le, "utf16le")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	be := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	text, err = Decode(be, "utf16be")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestDecodeFailure(t *testing.T) {
	tests := []struct {
		name  string
		label string
		data  []byte
	}{
		{"truncated gbk", "gbk", []byte{0xC4, 0xE3, 0xBA}},
		{"truncated shift_jis", "shift_jis", []byte{'a', 0x82}},
		{"odd utf16", "utf16le", []byte{'h', 0x00, 'i'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToUTF8(tt.data, tt.label)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))
			assert.True(t, strings.HasPrefix(err.Error(), "decode failed: "), err.Error())
		})
	}
}

func TestDecodeReportsOffset(t *testing.T) {
	tests := []struct {
		name  string
		label string
		data  []byte
		want  string
	}{
		{"undefined windows-1252 byte", "windows-1252", []byte("a\x81b"), "1 invalid byte sequence(s) for windows-1252, first at offset 1"},
		{"odd utf16 byte", "utf16le", []byte{'h', 0x00, 'i'}, "first at offset 2"},
		{"bad gbk lead after text", "gbk", []byte{'a', 'b', 0xFF, 'c', 0xFF}, "2 invalid byte sequence(s) for gbk, first at offset 2"},
		{"truncated gbk pair", "gbk", []byte{0xC4, 0xE3, 0xBA}, "first at offset 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.label)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeAcceptsEncodedReplacementChar(t *testing.T) {
	encoded, err := Encode("a�b", "gb18030")
	require.NoError(t, err)

	text, err := Decode(encoded, "gb18030")
	require.NoError(t, err)
	assert.Equal(t, "a�b", text)
}

func TestUnsupportedEncoding(t *testing.T) {
	_, err := ToUTF8([]byte("abc"), "koi8-r")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))

	_, err = Lookup("utf32le")
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))

	_, err = Encode("abc", "ebcdic")
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
}

func TestLookupIgnoresCase(t *testing.T) {
	for _, label := range []string{"GBK", "Shift_JIS", "EUC-KR", "Windows-1251", "UTF-16LE"} {
		enc, err := Lookup(label)
		require.NoError(t, err, label)
		assert.NotNil(t, enc)
	}
}
