package mailparse

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

var (
	encodedWord = regexp.MustCompile(`=\?([^?]*)\?([bBqQ])\?(.*?)\?=`)

	errInvalidQ = errors.New("invalid Q-encoded payload")
)

// headerToken is one run of a header value: either literal text or the
// payload bytes of one or more adjacent encoded-words sharing a charset
type headerToken struct {
	text    string
	payload []byte
	charset string
	encoded bool
}

// DecodeHeader decodes RFC 2047 encoded-words (e.g. "=?UTF-8?B?...?=") to plain text.
// Decoded runs and literal text are joined with a single space. A value without
// encoded-words is returned unchanged.
func DecodeHeader(raw string) string {
	if !encodedWord.MatchString(raw) {
		return raw
	}

	var parts []string
	for _, tok := range tokenizeHeader(raw) {
		if tok.encoded {
			parts = append(parts, decodeCharset(tok.payload, tok.charset))
		} else {
			parts = append(parts, tok.text)
		}
	}
	return strings.Join(parts, " ")
}

func tokenizeHeader(value string) []headerToken {
	var tokens []headerToken

	addLiteral := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tokens = append(tokens, headerToken{text: s})
		}
	}

	last := 0
	for _, m := range encodedWord.FindAllStringSubmatchIndex(value, -1) {
		addLiteral(value[last:m[0]])
		last = m[1]

		charset := value[m[2]:m[3]]
		// RFC 2231 language suffix: =?utf-8*fr?Q?...?=
		if i := strings.IndexByte(charset, '*'); i >= 0 {
			charset = charset[:i]
		}

		payload, err := decodePayload(value[m[4]:m[5]], value[m[6]:m[7]])
		if err != nil {
			addLiteral(value[m[0]:m[1]])
			continue
		}

		if n := len(tokens); n > 0 && tokens[n-1].encoded && strings.EqualFold(tokens[n-1].charset, charset) {
			tokens[n-1].payload = append(tokens[n-1].payload, payload...)
			continue
		}
		tokens = append(tokens, headerToken{payload: payload, charset: charset, encoded: true})
	}
	addLiteral(value[last:])

	return tokens
}

func decodePayload(encoding, payload string) ([]byte, error) {
	if strings.EqualFold(encoding, "B") {
		return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	return decodeQ(payload)
}

// decodeQ handles the header variant of quoted-printable, where '_' is a space
func decodeQ(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '_':
			out = append(out, ' ')
		case '=':
			if i+2 >= len(s) {
				return nil, errInvalidQ
			}
			b, err := hex.DecodeString(s[i+1 : i+3])
			if err != nil {
				return nil, errInvalidQ
			}
			out = append(out, b[0])
			i += 2
		default:
			out = append(out, c)
		}
	}
	return out, nil
}
