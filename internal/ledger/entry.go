package ledger

import (
	"fmt"
	"time"
)

// Kind tags the variant held by an Entry.
type Kind string

const (
	KindModification Kind = "modification"
	KindFeedback     Kind = "feedback"
)

// ModificationKind is the registry transition a modification records.
type ModificationKind string

const (
	Add      ModificationKind = "add"
	Modify   ModificationKind = "modify"
	Rollback ModificationKind = "rollback"
)

// ModificationEvent records one successful registry transition.
type ModificationEvent struct {
	Kind          ModificationKind `json:"kind" msgpack:"kind"`
	Capability    string           `json:"capability" msgpack:"capability"`
	At            time.Time        `json:"at" msgpack:"at"`
	VersionBefore int              `json:"version_before" msgpack:"version_before"`
	VersionAfter  int              `json:"version_after" msgpack:"version_after"`
}

// FeedbackEvent records an externally supplied success or failure signal.
type FeedbackEvent struct {
	Note    string    `json:"note" msgpack:"note"`
	Success bool      `json:"success" msgpack:"success"`
	At      time.Time `json:"at" msgpack:"at"`
}

// Entry is one immutable ledger record. Exactly one of Modification and
// Feedback is set, as indicated by Kind.
type Entry struct {
	Seq          uint64             `json:"seq" msgpack:"seq"`
	Kind         Kind               `json:"kind" msgpack:"kind"`
	Modification *ModificationEvent `json:"modification,omitempty" msgpack:"modification,omitempty"`
	Feedback     *FeedbackEvent     `json:"feedback,omitempty" msgpack:"feedback,omitempty"`
}

// At returns the timestamp of the held event.
func (e Entry) At() time.Time {
	switch {
	case e.Modification != nil:
		return e.Modification.At
	case e.Feedback != nil:
		return e.Feedback.At
	}
	return time.Time{}
}

// Capability returns the capability a modification concerns, or "".
func (e Entry) Capability() string {
	if e.Modification != nil {
		return e.Modification.Capability
	}
	return ""
}

// String renders a one-line description of the entry.
func (e Entry) String() string {
	switch {
	case e.Modification != nil:
		m := e.Modification
		return fmt.Sprintf("#%d %s %s v%d->v%d", e.Seq, m.Kind, m.Capability, m.VersionBefore, m.VersionAfter)
	case e.Feedback != nil:
		outcome := "failure"
		if e.Feedback.Success {
			outcome = "success"
		}
		return fmt.Sprintf("#%d feedback %s: %s", e.Seq, outcome, e.Feedback.Note)
	}
	return fmt.Sprintf("#%d %s", e.Seq, e.Kind)
}

// clone returns a deep copy so callers can never mutate stored events.
func (e Entry) clone() Entry {
	if e.Modification != nil {
		m := *e.Modification
		e.Modification = &m
	}
	if e.Feedback != nil {
		f := *e.Feedback
		e.Feedback = &f
	}
	return e
}
