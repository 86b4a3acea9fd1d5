package model

import (
	"fmt"
	"time"
)

// ArtifactType classifies a piece of deal source material.
// The set is closed: decoding an unknown type is a validation error,
// never a silent passthrough.
type ArtifactType string

const (
	ArtifactTranscript    ArtifactType = "transcript"
	ArtifactEmail         ArtifactType = "email"
	ArtifactCRMSnapshot   ArtifactType = "crm_snapshot"
	ArtifactDocument      ArtifactType = "document"
	ArtifactSlackThread   ArtifactType = "slack_thread"
	ArtifactCalendarEvent ArtifactType = "calendar_event"
)

// ArtifactTypes lists every valid artifact type in a stable order.
var ArtifactTypes = []ArtifactType{
	ArtifactTranscript,
	ArtifactEmail,
	ArtifactCRMSnapshot,
	ArtifactDocument,
	ArtifactSlackThread,
	ArtifactCalendarEvent,
}

// Artifact is a tagged union over the artifact types. Type is the
// discriminant; exactly one payload field matching Type must be set.
type Artifact struct {
	ID         string       `json:"id"`
	DealID     string       `json:"dealId"`
	Type       ArtifactType `json:"type"`
	CreatedAt  time.Time    `json:"createdAt"`
	Anonymized bool         `json:"anonymized"`

	Transcript    *TranscriptPayload    `json:"transcript,omitempty"`
	Email         *EmailPayload         `json:"email,omitempty"`
	CRMSnapshot   *CRMSnapshotPayload   `json:"crmSnapshot,omitempty"`
	Document      *DocumentPayload      `json:"document,omitempty"`
	SlackThread   *SlackThreadPayload   `json:"slackThread,omitempty"`
	CalendarEvent *CalendarEventPayload `json:"calendarEvent,omitempty"`
}

// TranscriptTurn is a single utterance in a call transcript.
type TranscriptTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TranscriptPayload holds a call transcript with ordered turns.
type TranscriptPayload struct {
	Turns     []TranscriptTurn `json:"turns"`
	Attendees []string         `json:"attendees,omitempty"`
	Date      time.Time        `json:"date"`
}

// EmailMessage is a single message in an email thread.
type EmailMessage struct {
	From string    `json:"from"`
	To   []string  `json:"to"`
	Date time.Time `json:"date"`
	Body string    `json:"body"`
}

// EmailPayload holds an email thread with ordered messages.
type EmailPayload struct {
	Messages     []EmailMessage `json:"messages"`
	Participants []string       `json:"participants,omitempty"`
}

// CRMSnapshotPayload captures the CRM state of a deal at a point in time.
type CRMSnapshotPayload struct {
	DealProperties map[string]string `json:"dealProperties"`
	Contacts       []string          `json:"contacts,omitempty"`
	Notes          []string          `json:"notes,omitempty"`
	ActivityLog    []string          `json:"activityLog,omitempty"`
}

// DocumentPayload holds a shared document (proposal, security review, etc).
type DocumentPayload struct {
	Title        string `json:"title"`
	DocumentType string `json:"documentType"`
	Content      string `json:"content"`
}

// SlackMessage is a single message in a chat thread.
type SlackMessage struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SlackThreadPayload holds a chat thread from a shared channel.
type SlackThreadPayload struct {
	Channel  string         `json:"channel"`
	Messages []SlackMessage `json:"messages"`
}

// CalendarEventPayload holds a scheduled meeting.
type CalendarEventPayload struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Duration  string    `json:"duration,omitempty"`
	Attendees []string  `json:"attendees,omitempty"`
}

// ArtifactSummary is the id/type/title/date view of an artifact exposed
// through checkpoint availableArtifacts. Full content is never duplicated
// here; checkpoints reference artifacts by id only.
type ArtifactSummary struct {
	ID    string       `json:"id"`
	Type  ArtifactType `json:"type"`
	Title string       `json:"title"`
	Date  time.Time    `json:"date"`
}

// Validate checks the tagged-union invariant: a known type, required common
// fields, and exactly the payload field matching the discriminant.
func (a *Artifact) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("artifact missing id")
	}
	if a.DealID == "" {
		return fmt.Errorf("artifact %s: missing dealId", a.ID)
	}

	payloads := map[ArtifactType]bool{
		ArtifactTranscript:    a.Transcript != nil,
		ArtifactEmail:         a.Email != nil,
		ArtifactCRMSnapshot:   a.CRMSnapshot != nil,
		ArtifactDocument:      a.Document != nil,
		ArtifactSlackThread:   a.SlackThread != nil,
		ArtifactCalendarEvent: a.CalendarEvent != nil,
	}

	if _, known := payloads[a.Type]; !known {
		return fmt.Errorf("artifact %s: unknown type %q", a.ID, a.Type)
	}

	for typ, present := range payloads {
		if typ == a.Type && !present {
			return fmt.Errorf("artifact %s: type %q but no %q payload", a.ID, a.Type, typ)
		}
		if typ != a.Type && present {
			return fmt.Errorf("artifact %s: type %q carries stray %q payload", a.ID, a.Type, typ)
		}
	}

	return nil
}

// Date returns the artifact's effective point on the deal timeline.
// Transcripts and calendar events carry their own date; everything else
// falls back to createdAt.
func (a *Artifact) Date() time.Time {
	switch a.Type {
	case ArtifactTranscript:
		if a.Transcript != nil && !a.Transcript.Date.IsZero() {
			return a.Transcript.Date
		}
	case ArtifactCalendarEvent:
		if a.CalendarEvent != nil && !a.CalendarEvent.Date.IsZero() {
			return a.CalendarEvent.Date
		}
	case ArtifactEmail:
		if a.Email != nil && len(a.Email.Messages) > 0 {
			return a.Email.Messages[0].Date
		}
	}
	return a.CreatedAt
}

// Title returns a short human-readable label for summaries.
func (a *Artifact) Title() string {
	switch a.Type {
	case ArtifactDocument:
		if a.Document != nil && a.Document.Title != "" {
			return a.Document.Title
		}
	case ArtifactCalendarEvent:
		if a.CalendarEvent != nil && a.CalendarEvent.Title != "" {
			return a.CalendarEvent.Title
		}
	case ArtifactSlackThread:
		if a.SlackThread != nil && a.SlackThread.Channel != "" {
			return "#" + a.SlackThread.Channel
		}
	}
	return fmt.Sprintf("%s %s", a.Type, a.ID)
}

// Summary returns the id/type/title/date view of the artifact.
func (a *Artifact) Summary() ArtifactSummary {
	return ArtifactSummary{
		ID:    a.ID,
		Type:  a.Type,
		Title: a.Title(),
		Date:  a.Date(),
	}
}
