package mailparse

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/emersion/go-message"
)

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

func readTree(t *testing.T, raw string) *Part {
	t.Helper()
	entity, err := message.Read(strings.NewReader(raw))
	if err != nil && !isRecoverable(err) {
		t.Fatalf("message.Read() error: %v", err)
	}
	return ReadTree(entity)
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain ASCII",
			input:    "Hello World",
			expected: "Hello World",
		},
		{
			name:     "Plain ASCII keeps spacing",
			input:    "  Rendez-vous   confirmé ",
			expected: "  Rendez-vous   confirmé ",
		},
		{
			name:     "UTF-8 Q encoded",
			input:    "=?UTF-8?Q?Caf=C3=A9?=",
			expected: "Café",
		},
		{
			name:     "UTF-8 encoded with underscores",
			input:    "=?UTF-8?Q?Important_:_comment_mettre_=C3=A0_jour?=",
			expected: "Important : comment mettre à jour",
		},
		{
			name:     "ISO-8859-1 encoded",
			input:    "=?ISO-8859-1?Q?Caf=E9?=",
			expected: "Café",
		},
		{
			name:     "Base64 encoded",
			input:    "=?UTF-8?B?SGVsbG8gV29ybGQ=?=",
			expected: "Hello World",
		},
		{
			name:     "Base64 without padding",
			input:    "=?utf-8?b?SGVsbG8gV29ybGQ?=",
			expected: "Hello World",
		},
		{
			name:     "Literal text around encoded word",
			input:    "Re: =?UTF-8?Q?Caf=C3=A9?= menu",
			expected: "Re: Café menu",
		},
		{
			name:     "Adjacent words in one charset are merged",
			input:    "=?UTF-8?Q?Hello?= =?UTF-8?Q?_World?=",
			expected: "Hello World",
		},
		{
			name:     "Multi-byte sequence split over two words",
			input:    "=?UTF-8?Q?Caf=C3?=\r\n =?UTF-8?Q?=A9?=",
			expected: "Café",
		},
		{
			name:     "Different charsets joined with one space",
			input:    "=?UTF-8?Q?Caf=C3=A9?==?ISO-8859-1?Q?cr=E8me?=",
			expected: "Café crème",
		},
		{
			name:     "Empty charset defaults to UTF-8",
			input:    "=??Q?Caf=C3=A9?=",
			expected: "Café",
		},
		{
			name:     "Unknown charset falls back to UTF-8",
			input:    "=?x-unknown-charset?Q?Caf=C3=A9?=",
			expected: "Café",
		},
		{
			name:     "Invalid bytes are replaced",
			input:    "=?UTF-8?Q?Caf=FF?=",
			expected: "Caf�",
		},
		{
			name:     "Broken payload kept as literal",
			input:    "=?UTF-8?Q?bad=Z?=",
			expected: "=?UTF-8?Q?bad=Z?=",
		},
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeHeader(tt.input)
			if got != tt.expected {
				t.Errorf("DecodeHeader() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSelectBody(t *testing.T) {
	alternative := func(first, second string) string {
		return crlf(
			"Subject: test",
			"MIME-Version: 1.0",
			`Content-Type: multipart/alternative; boundary="b1"`,
			"",
			"--b1",
			first,
			"--b1",
			second,
			"--b1--",
			"",
		)
	}
	plainPart := crlf(`Content-Type: text/plain; charset="utf-8"`, "", "Hello")
	htmlPart := crlf(`Content-Type: text/html; charset="utf-8"`, "", "<p>Hello</p>")

	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{
			name: "Plain before HTML",
			raw:  alternative(plainPart, htmlPart),
			want: ptr("Hello"),
		},
		{
			name: "HTML before plain",
			raw:  alternative(htmlPart, plainPart),
			want: ptr("Hello"),
		},
		{
			name: "HTML only",
			raw:  alternative(htmlPart, crlf("Content-Type: image/png", "Content-Transfer-Encoding: base64", "", "iVBORw0KGgo=")),
			want: ptr("<p>Hello</p>"),
		},
		{
			name: "First plain part wins",
			raw:  alternative(plainPart, crlf("Content-Type: text/plain", "", "Second")),
			want: ptr("Hello"),
		},
		{
			name: "Image only",
			raw: crlf(
				`Content-Type: multipart/mixed; boundary="b1"`,
				"",
				"--b1",
				"Content-Type: image/png",
				"Content-Transfer-Encoding: base64",
				"",
				"iVBORw0KGgo=",
				"--b1--",
				"",
			),
			want: nil,
		},
		{
			name: "Single part without content type",
			raw:  crlf("Subject: hi", "", "Hello world"),
			want: ptr("Hello world"),
		},
		{
			name: "Single part HTML",
			raw:  crlf("Content-Type: text/html", "", "<b>hi</b>"),
			want: ptr("<b>hi</b>"),
		},
		{
			name: "Single part attachment",
			raw:  crlf("Content-Type: application/pdf", "", "%PDF-1.4"),
			want: nil,
		},
		{
			name: "Quoted-printable Latin-1",
			raw: alternative(
				crlf("Content-Type: text/plain; charset=ISO-8859-1", "Content-Transfer-Encoding: quoted-printable", "", "Caf=E9"),
				htmlPart,
			),
			want: ptr("Café"),
		},
		{
			name: "Invalid UTF-8 is replaced",
			raw:  alternative(crlf("Content-Type: text/plain; charset=utf-8", "", "bad \xff byte"), htmlPart),
			want: ptr("bad � byte"),
		},
		{
			name: "Unreadable plain part is skipped",
			raw: alternative(
				crlf("Content-Type: text/plain", "Content-Transfer-Encoding: base64", "", "!!!not base64!!!"),
				htmlPart,
			),
			want: ptr("<p>Hello</p>"),
		},
		{
			name: "Nested multipart",
			raw: crlf(
				`Content-Type: multipart/mixed; boundary="outer"`,
				"",
				"--outer",
				`Content-Type: multipart/alternative; boundary="inner"`,
				"",
				"--inner",
				htmlPart,
				"--inner",
				plainPart,
				"--inner--",
				"--outer",
				"Content-Type: application/pdf",
				"",
				"%PDF",
				"--outer--",
				"",
			),
			want: ptr("Hello"),
		},
		{
			name: "Forwarded message plain text wins over outer HTML",
			raw:  forwardedInvite("SUMMARY:Inner\r\n"),
			want: ptr("inner plain"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectBody(readTree(t, tt.raw))
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("SelectBody() = %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("SelectBody() = nil, want %q", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("SelectBody() = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestSelectBody_SinglePartKeepsTrailingNewline(t *testing.T) {
	got := SelectBody(readTree(t, "Content-Type: text/plain\r\n\r\nline one\r\nline two\r\n"))
	if got == nil || *got != "line one\r\nline two\r\n" {
		t.Errorf("SelectBody() = %v", got)
	}
}

const testICS = "BEGIN:VCALENDAR\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:Consultation\r\n" +
	"DTSTART:20240312T090000Z\r\n" +
	"ORGANIZER;CN=Secretariat:mailto:desk@example.be\r\n" +
	"ATTENDEE;CN=Alice:mailto:alice@example.com\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func calendarMessage(parts ...string) string {
	lines := []string{
		"Subject: =?UTF-8?Q?Invitation_=C3=A0_une_consultation?=",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="mixed"`,
		"",
	}
	for _, p := range parts {
		lines = append(lines, "--mixed", p)
	}
	lines = append(lines, "--mixed--", "")
	return crlf(lines...)
}

// forwardedInvite wraps a plain text and calendar pair in a message/rfc822
// part behind an HTML cover note
func forwardedInvite(ics string) string {
	return crlf(
		"Subject: Fwd: invite",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="outer"`,
		"",
		"--outer",
		"Content-Type: text/html",
		"",
		"<p>see attached</p>",
		"--outer",
		"Content-Type: message/rfc822",
		"",
		"Subject: invite",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="inner"`,
		"",
		"--inner",
		"Content-Type: text/plain",
		"",
		"inner plain",
		"--inner",
		"Content-Type: text/calendar; charset=utf-8",
		"",
		ics+"--inner--",
		"",
		"--outer--",
		"",
	)
}

func base64Part(contentType string, payload []byte) string {
	return crlf(
		"Content-Type: "+contentType,
		"Content-Transfer-Encoding: base64",
		"",
		base64.StdEncoding.EncodeToString(payload),
	)
}

func TestFindCalendar(t *testing.T) {
	t.Run("Parses first calendar part", func(t *testing.T) {
		second := strings.Replace(testICS, "Consultation", "Other", 1)
		raw := calendarMessage(
			crlf("Content-Type: text/plain", "", "See invite"),
			base64Part(`text/calendar; charset=UTF-8; method=REQUEST`, []byte(testICS)),
			base64Part(`text/calendar; charset=UTF-8`, []byte(second)),
		)

		got := FindCalendar(readTree(t, raw))
		if got == nil || got.Event == nil {
			t.Fatalf("FindCalendar() = %+v, want event", got)
		}
		if got.Err != nil {
			t.Errorf("FindCalendar().Err = %v, want nil", got.Err)
		}
		if got.Event.Summary != "Consultation" {
			t.Errorf("Summary = %q, want %q", got.Event.Summary, "Consultation")
		}
		if got.Event.RawSource != testICS {
			t.Errorf("RawSource = %q, want %q", got.Event.RawSource, testICS)
		}
		if len(got.Event.Attendees) != 1 || got.Event.Attendees[0].Email != "alice@example.com" {
			t.Errorf("Attendees = %+v", got.Event.Attendees)
		}
	})

	t.Run("Invalid UTF-8 yields decode error", func(t *testing.T) {
		raw := calendarMessage(base64Part("text/calendar", []byte("BEGIN:VCALENDAR\r\nSUMMARY:Caf\xe9\r\n")))

		got := FindCalendar(readTree(t, raw))
		if got == nil {
			t.Fatal("FindCalendar() = nil, want decode error")
		}
		if got.Event != nil {
			t.Errorf("FindCalendar().Event = %+v, want nil", got.Event)
		}
		if got.Err == nil || got.Err.Message != "Error decoding .ics file content" {
			t.Errorf("FindCalendar().Err = %+v", got.Err)
		}
	})

	t.Run("Declared charset is not applied", func(t *testing.T) {
		raw := calendarMessage(base64Part("text/calendar; charset=ISO-8859-1", []byte("SUMMARY:Caf\xe9\r\n")))

		got := FindCalendar(readTree(t, raw))
		if got == nil || got.Err == nil {
			t.Errorf("FindCalendar() = %+v, want decode error", got)
		}
	})

	t.Run("No calendar part", func(t *testing.T) {
		raw := calendarMessage(crlf("Content-Type: text/plain", "", "Nothing here"))
		if got := FindCalendar(readTree(t, raw)); got != nil {
			t.Errorf("FindCalendar() = %+v, want nil", got)
		}
	})

	t.Run("Calendar inside forwarded message", func(t *testing.T) {
		got := FindCalendar(readTree(t, forwardedInvite("BEGIN:VEVENT\r\nSUMMARY:Inner\r\nEND:VEVENT\r\n")))
		if got == nil || got.Event == nil {
			t.Fatalf("FindCalendar() = %+v, want event", got)
		}
		if got.Event.Summary != "Inner" {
			t.Errorf("Summary = %q, want %q", got.Event.Summary, "Inner")
		}
	})

	t.Run("Unparsable forwarded message stays a leaf", func(t *testing.T) {
		raw := calendarMessage(crlf("Content-Type: message/rfc822", "", "no header block"))
		tree := readTree(t, raw)
		if n := len(tree.Parts[0].Parts); n != 0 {
			t.Errorf("attached message has %d children, want 0", n)
		}
		if got := FindCalendar(tree); got != nil {
			t.Errorf("FindCalendar() = %+v, want nil", got)
		}
	})

	t.Run("Single part calendar is ignored", func(t *testing.T) {
		raw := crlf("Content-Type: text/calendar; charset=utf-8", "", testICS)
		if got := FindCalendar(readTree(t, raw)); got != nil {
			t.Errorf("FindCalendar() = %+v, want nil", got)
		}
	})
}

func TestBuildRecord(t *testing.T) {
	raw := calendarMessage(
		crlf(
			`Content-Type: multipart/alternative; boundary="alt"`,
			"",
			"--alt",
			"Content-Type: text/html; charset=utf-8",
			"",
			"<p>Bonjour</p>",
			"--alt",
			"Content-Type: text/plain; charset=utf-8",
			"",
			"Bonjour",
			"--alt--",
		),
		base64Part("text/calendar; method=REQUEST", []byte(testICS)),
	)

	record, err := BuildRecord([]byte(raw))
	if err != nil {
		t.Fatalf("BuildRecord() error: %v", err)
	}

	if record.Title != "Invitation à une consultation" {
		t.Errorf("Title = %q", record.Title)
	}
	if record.Content == nil || *record.Content != "Bonjour" {
		t.Errorf("Content = %v, want %q", record.Content, "Bonjour")
	}
	if record.AttachmentCalendar == nil || record.AttachmentCalendar.Event == nil {
		t.Fatalf("AttachmentCalendar = %+v, want event", record.AttachmentCalendar)
	}
	if record.AttachmentCalendar.Event.OrganizerEmail != "desk@example.be" {
		t.Errorf("OrganizerEmail = %q", record.AttachmentCalendar.Event.OrganizerEmail)
	}
}

func TestBuildRecord_Minimal(t *testing.T) {
	record, err := BuildRecord([]byte("From: a@example.com\r\n\r\nhi\r\n"))
	if err != nil {
		t.Fatalf("BuildRecord() error: %v", err)
	}
	if record.Title != "" {
		t.Errorf("Title = %q, want empty", record.Title)
	}
	if record.Content == nil || *record.Content != "hi\r\n" {
		t.Errorf("Content = %v", record.Content)
	}
	if record.AttachmentCalendar != nil {
		t.Errorf("AttachmentCalendar = %+v, want nil", record.AttachmentCalendar)
	}
}

func TestBuildRecord_FoldedSubject(t *testing.T) {
	raw := crlf(
		"Subject: =?UTF-8?Q?Rendez-vous_confirm=C3=A9?=",
		" =?UTF-8?Q?_pour_mardi?=",
		"",
		"body",
	)

	record, err := BuildRecord([]byte(raw))
	if err != nil {
		t.Fatalf("BuildRecord() error: %v", err)
	}
	if record.Title != "Rendez-vous confirmé pour mardi" {
		t.Errorf("Title = %q", record.Title)
	}
}

func ptr(s string) *string { return &s }

func TestParseCalendarBytes(t *testing.T) {
	if got := ParseCalendarBytes([]byte(testICS)); got.Event == nil || got.Event.RawSource != testICS {
		t.Errorf("ParseCalendarBytes(valid) = %+v", got)
	}
	if got := ParseCalendarBytes([]byte{0xc3, 0x28}); got.Err == nil || got.Event != nil {
		t.Errorf("ParseCalendarBytes(invalid) = %+v, want decode error", got)
	}
}
