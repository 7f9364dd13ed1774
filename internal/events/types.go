package events

import "time"

// EventType identifies what happened to a draft
type EventType string

const (
	EventTypeDraftAdded            EventType = "draft.added"
	EventTypeDraftRemoved          EventType = "draft.removed"
	EventTypePublishStarted        EventType = "draft.publish_started"
	EventTypeDraftPublished        EventType = "draft.published"
	EventTypePublishFailed         EventType = "draft.publish_failed"
	EventTypeReadOnlyAccountNotice EventType = "account.read_only_notice"
)

// Event is the base interface for everything emitted on the bus
type Event interface {
	GetType() EventType
}

// DraftEvent describes a change to one draft in one owner's store
type DraftEvent struct {
	Type    EventType
	OwnerID string
	DraftID string

	// FID is the account the cast was published under, when publishing
	FID uint64

	// Reason is the failure description or notice text
	Reason string

	// Duration covers the whole publish attempt for published/failed events
	Duration time.Duration
}

func (e *DraftEvent) GetType() EventType { return e.Type }
