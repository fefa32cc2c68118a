package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// EmailRecord is the structured result of extracting one raw message
type EmailRecord struct {
	Title              string              `json:"title"`
	Content            *string             `json:"content"`
	AttachmentCalendar *CalendarAttachment `json:"attachment_calendar"`
}

// Attendee is one ATTENDEE line of a calendar invite
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CalendarEvent holds the fields scanned out of an ICS attachment.
// RawSource is the exact text the scanner was given.
type CalendarEvent struct {
	Summary        string     `json:"summary"`
	DatetimeStart  string     `json:"datetime_start"`
	DatetimeEnd    string     `json:"datetime_end"`
	TZID           string     `json:"tzid"`
	OrganizerName  string     `json:"organizer_name"`
	OrganizerEmail string     `json:"organizer_email"`
	Attendees      []Attendee `json:"attendees"`
	RawSource      string     `json:"ics_file"`
}

// MarshalJSON keeps attendees as an array even when none were found
func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	type plain CalendarEvent
	p := plain(e)
	if p.Attendees == nil {
		p.Attendees = []Attendee{}
	}
	return json.Marshal(p)
}

// DecodeError marks a calendar part whose bytes are not valid text
type DecodeError struct {
	Message string `json:"Error"`
}

func (e *DecodeError) Error() string {
	return e.Message
}

// CalendarAttachment is either a parsed event or a decode failure, never both.
// A nil *CalendarAttachment means the message had no calendar part.
type CalendarAttachment struct {
	Event *CalendarEvent
	Err   *DecodeError
}

// MarshalJSON emits the event object or the {"Error": ...} object
func (a CalendarAttachment) MarshalJSON() ([]byte, error) {
	if a.Err != nil {
		return json.Marshal(a.Err)
	}
	if a.Event != nil {
		return json.Marshal(a.Event)
	}
	return []byte("null"), nil
}

// UnmarshalJSON discriminates on the presence of the "Error" key
func (a *CalendarAttachment) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	if _, ok := keys["Error"]; ok {
		a.Event = nil
		a.Err = &DecodeError{}
		return json.Unmarshal(data, a.Err)
	}

	a.Err = nil
	a.Event = &CalendarEvent{}
	return json.Unmarshal(data, a.Event)
}

// RawMessage is one message as fetched from the mail store
type RawMessage struct {
	UID          uint32
	Raw          []byte
	Flags        []string
	InternalDate time.Time
}

// HasFlag reports whether the message already carries the flag or keyword
func (m *RawMessage) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
