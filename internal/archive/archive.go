// Package archive feeds stored messages (mbox archives and single .eml
// files) through the record extractor.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mail-invite-extractor/internal/logging"
	"mail-invite-extractor/internal/mailparse"
	"mail-invite-extractor/internal/models"

	mboxlib "github.com/emersion/go-mbox"
)

// ReadMbox extracts a record from every message of an mbox stream, in order.
// Messages whose header cannot be read are logged and skipped.
func ReadMbox(r io.Reader) ([]*models.EmailRecord, error) {
	reader := mboxlib.NewReader(r)
	records := []*models.EmailRecord{}

	for idx := 0; ; idx++ {
		msg, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return records, fmt.Errorf("error reading mbox message %d: %w", idx, err)
		}

		record, err := mailparse.ReadRecord(msg)
		if err != nil {
			logging.Log.WithField("index", idx).Warnf("Skipping mbox message: %v", err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// ReadMboxFile is ReadMbox over a file path
func ReadMboxFile(path string) ([]*models.EmailRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening mbox: %w", err)
	}
	defer f.Close()

	return ReadMbox(f)
}

// ReadEmlFile extracts the record of a single RFC 5322 message file
func ReadEmlFile(path string) (*models.EmailRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	record, err := mailparse.BuildRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return record, nil
}
