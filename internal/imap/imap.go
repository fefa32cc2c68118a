package imap

import (
	"errors"

	"mail-invite-extractor/internal/models"
)

// ErrNotConnected is returned by every operation issued before Connect
var ErrNotConnected = errors.New("not connected")

// Client is the mail store the processor pulls messages from
type Client interface {
	Connect(server string) error
	Login(user, password string) error
	SelectMailbox(name string) error
	ListUnseenUIDs(from string) ([]uint32, error)
	FetchMessage(uid uint32) (*models.RawMessage, error)
	AddFlag(uid uint32, flag string) error
	MarkSeen(uid uint32) error
	Close() error
}
