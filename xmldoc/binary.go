package xmldoc

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Binary is a base64 payload taken from a leaf. Nothing is decoded until Bytes or
// WriteTo is called, and then the whole payload is materialized at once.
type Binary struct {
	encoded string
}

// NewBinary wraps an already extracted base64 text.
func NewBinary(encoded string) *Binary {
	return &Binary{encoded: encoded}
}

// EncodedLen returns the length of the encoded text, whitespace included.
func (b *Binary) EncodedLen() int {
	return len(b.encoded)
}

// Bytes decodes the payload. Whitespace and line breaks are ignored; unpadded
// input is accepted.
func (b *Binary) Bytes() ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, b.encoded)

	enc := base64.StdEncoding
	if len(compact)%4 != 0 && !strings.HasSuffix(compact, "=") {
		enc = base64.RawStdEncoding
	}

	data, err := enc.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("decode base64 content: %w", err)
	}
	return data, nil
}

// WriteTo decodes the payload and writes it to w.
func (b *Binary) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
