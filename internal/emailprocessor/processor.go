package emailprocessor

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	imapclient "mail-invite-extractor/internal/imap"
	"mail-invite-extractor/internal/logging"
	"mail-invite-extractor/internal/mailparse"
	"mail-invite-extractor/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Processor struct {
	imapClient imapclient.Client
	config     *models.Config
}

// NewProcessor creates a new Processor instance with the provided IMAP client and configuration
func NewProcessor(imapClient imapclient.Client, cfg *models.Config) *Processor {
	return &Processor{
		imapClient: imapClient,
		config:     cfg,
	}
}

// ProcessNew extracts records from the newest unseen messages, newest first.
// A message that fails is logged and left out of the batch.
func (p *Processor) ProcessNew() ([]*models.EmailRecord, error) {
	uids, err := p.imapClient.ListUnseenUIDs(p.config.Filter.From)
	if err != nil {
		return nil, err
	}

	uids = newest(uids, p.config.Filter.MaxResults)
	records := make([]*models.EmailRecord, 0, len(uids))

	for _, uid := range uids {
		record, err := p.ProcessEmail(uid)
		if err != nil {
			logging.Log.Errorf("Error processing email UID %d: %v", uid, err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// ProcessEmail orchestrates the complete workflow for one message:
// fetch → extract → label → optionally mark as seen
func (p *Processor) ProcessEmail(uid uint32) (*models.EmailRecord, error) {
	msg, err := p.imapClient.FetchMessage(uid)
	if err != nil {
		return nil, err
	}

	locallog := logging.Log.WithFields(logrus.Fields{
		"trace_id": uuid.New().String(),
		"uid":      uid,
		"date":     msg.InternalDate.Format(time.RFC3339),
	})

	record, err := mailparse.BuildRecord(msg.Raw)
	if err != nil {
		locallog.Errorf("Error parsing email UID %d: %v", uid, err)
		return nil, err
	}

	locallog.WithField("has_calendar", record.AttachmentCalendar != nil).
		Infof("Extracted email UID %d: %s", uid, record.Title)

	if label := p.config.Label; label != "" && !msg.HasFlag(label) {
		if err := p.imapClient.AddFlag(uid, label); err != nil {
			locallog.Errorf("Error labelling message UID %d with %s: %v", uid, label, err)
		}
	}

	if p.config.MarkAsRead {
		if err := p.imapClient.MarkSeen(uid); err != nil {
			locallog.Errorf("Error marking message UID %d as seen: %v", uid, err)
		}
	}

	return record, nil
}

// newest returns at most limit UIDs from the end of an ascending list, highest first
func newest(uids []uint32, limit int) []uint32 {
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}
	out := make([]uint32, len(uids))
	for i, uid := range uids {
		out[len(uids)-1-i] = uid
	}
	return out
}

// WriteJSON writes records as an indented JSON array without escaping HTML or non-ASCII text
func WriteJSON(w io.Writer, records any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("error encoding records: %w", err)
	}
	return nil
}
