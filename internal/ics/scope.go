package ics

// scope tracks which blocks the scanner is currently inside. The three
// memberships begin and end independently in document order, so a
// malformed file can leave a bit set across blocks; the predicates below
// are the only place capture rules consult it.
type scope uint8

const (
	inTimezone scope = 1 << iota
	inEvent
	inAlarm
)

// State is the enumerated view of a scope
type State int

const (
	Outside State = iota
	InTimezone
	InEvent
	InEventInAlarm
)

func (s State) String() string {
	switch s {
	case InTimezone:
		return "in-timezone"
	case InEvent:
		return "in-event"
	case InEventInAlarm:
		return "in-event-in-alarm"
	default:
		return "outside"
	}
}

func (s scope) has(b scope) bool { return s&b != 0 }

func (s *scope) enter(b scope) { *s |= b }

func (s *scope) leave(b scope) { *s &^= b }

// State folds the bits into the enumerated state. An alarm outside of any
// event has no state of its own and reports as Outside.
func (s scope) State() State {
	switch {
	case s.has(inEvent) && s.has(inAlarm):
		return InEventInAlarm
	case s.has(inEvent):
		return InEvent
	case s.has(inTimezone):
		return InTimezone
	default:
		return Outside
	}
}

// capturesTZID reports whether a TZID line belongs to a timezone definition
func (s scope) capturesTZID() bool {
	return s.has(inTimezone)
}

// capturesEventField reports whether SUMMARY/DTSTART/DTEND/ORGANIZER lines
// describe the event itself rather than one of its alarms
func (s scope) capturesEventField() bool {
	return s.has(inEvent) && !s.has(inAlarm)
}

// capturesAttendee ignores the event bit: ATTENDEE lines outside a VEVENT still count
func (s scope) capturesAttendee() bool {
	return !s.has(inAlarm)
}
