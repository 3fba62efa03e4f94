package store

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrBinary is returned when a notes file does not look like text.
var ErrBinary = errors.New("file does not contain text")

const (
	textDetectionSampleSize      = 4096
	nonPrintableThresholdPercent = 30
)

type textEncoding int

const (
	encodingUnknown textEncoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

// decodeText converts file content to a UTF-8 string. A UTF-8 byte order mark
// is dropped and BOM-marked UTF-16 is transcoded. Saves always write UTF-8.
func decodeText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	switch detectEncoding(content) {
	case encodingUTF8BOM:
		return string(content[3:]), nil
	case encodingUTF16LE:
		return decodeUTF16(content, unicode.LittleEndian)
	case encodingUTF16BE:
		return decodeUTF16(content, unicode.BigEndian)
	}
	if !looksLikeText(content) {
		return "", ErrBinary
	}
	return string(content), nil
}

func looksLikeText(content []byte) bool {
	sample := content
	if len(sample) > textDetectionSampleSize {
		sample = sample[:textDetectionSampleSize]
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}

	printable := 0
	for _, b := range sample {
		if isCommonTextByte(b) {
			printable++
		}
	}
	if printable == 0 {
		return false
	}
	return (len(sample)-printable)*100/len(sample) < nonPrintableThresholdPercent
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == '\t' || b == '\n' || b == '\r':
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	case b == 0x1B:
		return true
	default:
		return b >= 0x80
	}
}

func detectEncoding(sample []byte) textEncoding {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return encodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return encodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return encodingUTF16BE
		}
	}
	return encodingUnknown
}

func decodeUTF16(content []byte, endian unicode.Endianness) (string, error) {
	out, err := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder().Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
