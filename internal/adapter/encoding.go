package adapter

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// codepages maps OEM/ANSI code page numbers to decoders for console output
var codepages = map[string]encoding.Encoding{
	"437":  charmap.CodePage437,
	"850":  charmap.CodePage850,
	"866":  charmap.CodePage866,
	"1252": charmap.Windows1252,
}

// DecodeOutput converts console output in codepage to UTF-8. An empty
// codepage returns the bytes unchanged; undecodable input is returned raw.
func DecodeOutput(codepage string, raw []byte) string {
	enc, ok := codepages[codepage]
	if !ok {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// EncodePowerShell encodes script for powershell -EncodedCommand
// (base64 of UTF-16LE without BOM)
func EncodePowerShell(script string) (string, error) {
	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	encoded, err := utf16.String(script)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(encoded)), nil
}
