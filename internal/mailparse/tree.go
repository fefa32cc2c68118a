package mailparse

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
)

// Part is a fully buffered node of a MIME message. Bodies are already
// transfer-decoded but still in their declared charset.
type Part struct {
	MediaType string
	Params    map[string]string
	Body      []byte
	Parts     []*Part
	Multipart bool

	// Err is set when the body (or, for multiparts, the next child) could not be read
	Err error
}

// Charset returns the declared charset parameter, if any
func (p *Part) Charset() string {
	return p.Params["charset"]
}

// Walk visits p and then every descendant in document order, including the
// contents of attached messages
func (p *Part) Walk(fn func(*Part)) {
	fn(p)
	for _, child := range p.Parts {
		child.Walk(fn)
	}
}

// ReadTree buffers the whole entity so that several selectors can inspect it
func ReadTree(e *message.Entity) *Part {
	mediaType, params := contentType(e.Header)
	p := &Part{MediaType: mediaType, Params: params}

	mr := e.MultipartReader()
	if mr == nil {
		p.Body, p.Err = io.ReadAll(e.Body)
		if p.Err == nil && mediaType == "message/rfc822" {
			p.readAttached()
		}
		return p
	}

	p.Multipart = true
	for {
		child, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil && !isRecoverable(err) {
			p.Err = err
			break
		}
		p.Parts = append(p.Parts, ReadTree(child))
	}
	return p
}

// readAttached parses a forwarded message body and hangs its tree below p.
// A body that is not a readable message stays an opaque leaf.
func (p *Part) readAttached() {
	inner, err := message.Read(bytes.NewReader(p.Body))
	if err != nil && !isRecoverable(err) {
		return
	}
	p.Parts = append(p.Parts, ReadTree(inner))
}

// contentType defaults to text/plain like a mail reader would for a
// missing or unparsable Content-Type
func contentType(h message.Header) (string, map[string]string) {
	raw := h.Get("Content-Type")
	if raw == "" {
		return "text/plain", map[string]string{}
	}

	mediaType, params, err := mime.ParseMediaType(raw)
	if err != nil && mediaType == "" {
		return "text/plain", map[string]string{}
	}
	if params == nil {
		params = map[string]string{}
	}
	return strings.ToLower(mediaType), params
}

// isRecoverable reports go-message errors that still come with a usable
// entity: the raw body is kept and charset handling is done here
func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}
