// Package mailparse turns raw RFC 5322 messages into EmailRecords: decoded
// subject, preferred text body and the first embedded calendar invite.
package mailparse

import (
	"bytes"
	"fmt"
	"io"

	"mail-invite-extractor/internal/models"

	"github.com/emersion/go-message"
)

// BuildRecord extracts title, content and calendar attachment from raw message bytes.
// Content problems never fail the call; only an unreadable header block does.
func BuildRecord(raw []byte) (*models.EmailRecord, error) {
	return ReadRecord(bytes.NewReader(raw))
}

// ReadRecord is BuildRecord over a stream, e.g. one message of an mbox archive
func ReadRecord(r io.Reader) (*models.EmailRecord, error) {
	entity, err := message.Read(r)
	if err != nil && !isRecoverable(err) {
		return nil, fmt.Errorf("error reading message: %w", err)
	}

	tree := ReadTree(entity)

	return &models.EmailRecord{
		Title:              DecodeHeader(entity.Header.Get("Subject")),
		Content:            SelectBody(tree),
		AttachmentCalendar: FindCalendar(tree),
	}, nil
}
