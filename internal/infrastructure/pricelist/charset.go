package pricelist

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

const charsetUTF8 = "utf-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ToUTF8 transcodes body according to the charset parameter of contentType.
// It returns the UTF-8 body and the canonical charset name.
func ToUTF8(body []byte, contentType string) ([]byte, string, error) {
	charset := charsetUTF8
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if cs := strings.TrimSpace(params["charset"]); cs != "" {
				charset = strings.ToLower(cs)
			}
		}
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedCharset, charset)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = charset
	}
	if name == charsetUTF8 {
		return bytes.TrimPrefix(body, utf8BOM), name, nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	return decoded, name, nil
}
