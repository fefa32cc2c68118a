// Package ics scans the handful of fields an invite consumer needs out of
// iCalendar text without a full RFC 5545 parser.
package ics

import (
	"regexp"
	"strings"

	"mail-invite-extractor/internal/logging"
	"mail-invite-extractor/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	mailtoPattern = regexp.MustCompile(`mailto:(.*)`)
	cnPattern     = regexp.MustCompile(`CN=(.*?)[:;]`)
)

// Parse extracts summary, times, timezone, organizer and attendees from ICS
// text. It never fails: fields that are not found keep their zero value.
//
// Scalar fields are overwritten by every matching line, so a file with
// several VEVENT blocks reports the last event, while attendees accumulate
// across all of them.
func Parse(text string) *models.CalendarEvent {
	event := &models.CalendarEvent{
		Attendees: []models.Attendee{},
		RawSource: text,
	}

	var (
		state scope
		tzid  string
	)

	for n, line := range logicalLines(text) {
		previous := state
		switch {
		case strings.HasPrefix(line, "BEGIN:VTIMEZONE"):
			state.enter(inTimezone)
		case strings.HasPrefix(line, "END:VTIMEZONE"):
			state.leave(inTimezone)
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			state.enter(inEvent)
		case strings.HasPrefix(line, "END:VEVENT"):
			state.leave(inEvent)
			event.TZID = tzid
		case strings.HasPrefix(line, "BEGIN:VALARM"):
			state.enter(inAlarm)
		case strings.HasPrefix(line, "END:VALARM"):
			state.leave(inAlarm)
		}
		if state != previous && logging.Log.IsLevelEnabled(logrus.DebugLevel) {
			logging.Log.WithFields(logrus.Fields{
				"line":  n + 1,
				"from":  previous.State().String(),
				"state": state.State().String(),
			}).Debug("ics block transition")
		}

		if state.capturesTZID() && strings.HasPrefix(line, "TZID:") {
			tzid = valueOf(line)
		}

		if state.capturesEventField() {
			switch {
			case strings.HasPrefix(line, "SUMMARY:"):
				event.Summary = valueOf(line)
			case hasProperty(line, "DTSTART"):
				event.DatetimeStart = valueOf(line)
			case hasProperty(line, "DTEND"):
				event.DatetimeEnd = valueOf(line)
			case strings.Contains(line, "ORGANIZER"):
				if m := mailtoPattern.FindStringSubmatch(line); m != nil {
					event.OrganizerEmail = m[1]
				}
				if m := cnPattern.FindStringSubmatch(line); m != nil {
					event.OrganizerName = m[1]
				}
			}
		}

		if state.capturesAttendee() && strings.Contains(line, "ATTENDEE") {
			event.Attendees = append(event.Attendees, attendeeOf(line))
		}
	}

	return event
}

// logicalLines removes folding (a line break followed by one space) and
// splits what remains on CRLF, LF or CR.
func logicalLines(text string) []string {
	unfolded := strings.ReplaceAll(text, "\r\n ", "")
	unfolded = strings.ReplaceAll(unfolded, "\n ", "")
	unfolded = strings.ReplaceAll(unfolded, "\r\n", "\n")
	unfolded = strings.ReplaceAll(unfolded, "\r", "\n")
	return strings.Split(unfolded, "\n")
}

// hasProperty matches NAME: and NAME;param=...: forms. Only the date
// properties use it: their TZID parameter is common in real invites.
func hasProperty(line, name string) bool {
	if !strings.HasPrefix(line, name) || len(line) == len(name) {
		return false
	}
	next := line[len(name)]
	return next == ':' || next == ';'
}

// valueOf returns everything after the first colon of the line
func valueOf(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return value
}

func attendeeOf(line string) models.Attendee {
	var a models.Attendee
	if m := mailtoPattern.FindStringSubmatch(line); m != nil {
		a.Email = m[1]
	}
	if m := cnPattern.FindStringSubmatch(line); m != nil {
		a.Name = m[1]
	}
	return a
}
