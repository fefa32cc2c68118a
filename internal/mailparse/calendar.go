package mailparse

import (
	"unicode/utf8"

	"mail-invite-extractor/internal/ics"
	"mail-invite-extractor/internal/models"
)

const calendarDecodeError = "Error decoding .ics file content"

// FindCalendar parses the first text/calendar part of a multipart message.
// It returns nil when there is none; a single-part message is never scanned,
// even if it is itself text/calendar.
func FindCalendar(root *Part) *models.CalendarAttachment {
	if !root.Multipart {
		return nil
	}

	var found *Part
	root.Walk(func(p *Part) {
		if found == nil && !p.Multipart && p.MediaType == "text/calendar" {
			found = p
		}
	})
	if found == nil {
		return nil
	}

	if found.Err != nil {
		return &models.CalendarAttachment{Err: &models.DecodeError{Message: calendarDecodeError}}
	}
	return ParseCalendarBytes(found.Body)
}

// ParseCalendarBytes scans an ICS payload that must already be UTF-8; no
// declared charset is applied. Invalid bytes yield a DecodeError.
func ParseCalendarBytes(payload []byte) *models.CalendarAttachment {
	if !utf8.Valid(payload) {
		return &models.CalendarAttachment{Err: &models.DecodeError{Message: calendarDecodeError}}
	}
	return &models.CalendarAttachment{Event: ics.Parse(string(payload))}
}
