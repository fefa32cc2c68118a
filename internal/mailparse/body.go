package mailparse

import (
	"mail-invite-extractor/internal/logging"
)

// SelectBody returns the first text/plain part of the message, or the first
// text/html part when there is no plain text. It returns nil when neither exists.
func SelectBody(root *Part) *string {
	var text, html *string

	visit := func(p *Part) {
		if p.Multipart {
			return
		}
		switch p.MediaType {
		case "text/plain":
			if text == nil {
				text = decodeBody(p)
			}
		case "text/html":
			if html == nil {
				html = decodeBody(p)
			}
		}
	}

	if root.Multipart {
		root.Walk(visit)
	} else {
		visit(root)
	}

	if text != nil {
		return text
	}
	return html
}

func decodeBody(p *Part) *string {
	if p.Err != nil {
		logging.Log.WithError(p.Err).Warnf("Error decoding %s part, skipping", p.MediaType)
		return nil
	}
	s := decodeCharset(p.Body, p.Charset())
	return &s
}
