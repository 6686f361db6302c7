package encoding

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

const headSize = 4096

var xmlDeclEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// NewUTF8Reader detects the encoding of an NFSe document and returns a reader
// that decodes the content to UTF-8.
//
// Detection order:
//  1. Check for BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Honour the charset named in the XML declaration, unless the content
//     already holds valid multi-byte UTF-8 (a mis-declared export)
//  3. Validate if the content is valid UTF-8 and return as-is
//  4. Heuristic detection via chardet
//  5. Fallback to Windows-1252
//
// Municipal portals frequently export ISO-8859-1 with or without declaring it,
// so the declaration alone cannot be trusted to be present. The UTF-8 checks
// look at the whole document; a prefix can be plain ASCII.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	// The prolog and charset heuristics only need the head.
	head := data[:min(len(data), headSize)]

	// 1. Check for BOM.
	if bytes.HasPrefix(head, bomUTF8) {
		return bytes.NewReader(data[len(bomUTF8):]), nil
	}

	if bytes.HasPrefix(head, bomUTF16LE) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(bytes.NewReader(data), decoder), nil
	}

	if bytes.HasPrefix(head, bomUTF16BE) {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(bytes.NewReader(data), decoder), nil
	}

	valid := utf8.Valid(data)

	// 2. Declared charset.
	if label := DeclaredCharset(head); label != "" && !isUTF8Label(label) && !multiByteUTF8(data, valid) {
		enc, err := htmlindex.Get(label)
		if err == nil {
			return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
		}
	}

	// 3. If the content is valid UTF-8, return as-is.
	if valid {
		return bytes.NewReader(data), nil
	}

	// 4. Heuristic detection via chardet.
	detector := chardet.NewTextDetector()

	result, detectErr := detector.DetectBest(head)
	if detectErr == nil {
		switch result.Charset {
		case "ISO-8859-1", "windows-1252":
			return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()), nil
		case "ISO-8859-9":
			return transform.NewReader(bytes.NewReader(data), charmap.ISO8859_9.NewDecoder()), nil
		}
	}

	// 5. Fallback to Windows-1252.
	return transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()), nil
}

// DeclaredCharset returns the encoding named in an XML declaration at the
// start of buf, or "" when there is none.
func DeclaredCharset(buf []byte) string {
	m := xmlDeclEncoding.FindSubmatch(buf)
	if m == nil {
		return ""
	}

	return strings.ToLower(string(m[1]))
}

// CharsetReader is meant for xml.Decoder.CharsetReader when the input has
// already been through NewUTF8Reader: whatever the prolog still declares, the
// bytes are UTF-8 by now.
func CharsetReader(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}

// multiByteUTF8 reports whether data, already checked by utf8.Valid, holds at
// least one multi-byte rune.
func multiByteUTF8(data []byte, valid bool) bool {
	return valid && utf8.RuneCount(data) < len(data)
}

func isUTF8Label(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return true
	}

	return false
}
