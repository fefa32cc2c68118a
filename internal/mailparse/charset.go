package mailparse

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

const replacementChar = "�"

// decodeCharset converts raw bytes declared in the given charset to UTF-8.
// An empty or unknown charset is read as UTF-8; invalid sequences become
// U+FFFD instead of failing.
func decodeCharset(raw []byte, charset string) string {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return strings.ToValidUTF8(string(raw), replacementChar)
	}

	enc := lookupEncoding(name)
	if enc == nil {
		return strings.ToValidUTF8(string(raw), replacementChar)
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), replacementChar)
	}
	return strings.ToValidUTF8(string(out), replacementChar)
}

func lookupEncoding(name string) encoding.Encoding {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc
	}
	// ianaindex knows a few mail-only aliases htmlindex rejects, and
	// returns a nil encoding for names it knows but cannot decode
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	return nil
}
