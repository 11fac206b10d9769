package util

import (
	"fmt"
	"strings"
)

func isQuotable(b byte) bool {
	return b >= 0x20 && b < 0x7F && b != '"'
}

// NasmBytes renders s as the operand list of a NASM db directive. Runs of
// printable ASCII are quoted; every other byte, including the double quote,
// is written as a hex byte value. Bytes are rendered one by one, so multi-byte
// UTF-8 sequences survive unchanged.
func NasmBytes(s string) string {
	var parts []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, `"`+run.String()+`"`)
			run.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isQuotable(b) {
			run.WriteByte(b)
			continue
		}
		flush()
		parts = append(parts, fmt.Sprintf("0x%02X", b))
	}
	flush()
	return strings.Join(parts, ", ")
}
