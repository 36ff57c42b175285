// Package models defines the record types held in the local store.
package models

// Kind classifies a record kind.
type Kind string

const (
	KindExperience Kind = "experience"
	KindEmotion    Kind = "emotion"
	KindMessage    Kind = "message"
	KindHealth     Kind = "health"
)

// KindsInSyncOrder is the fixed order a sync session walks the kinds in.
// Attachment-bearing experiences go first, while the connection is freshest.
var KindsInSyncOrder = []Kind{KindExperience, KindEmotion, KindMessage, KindHealth}

// SyncState tracks whether a record has been acknowledged by the backend.
type SyncState int

const (
	// SyncPending means the record is persisted locally only.
	SyncPending SyncState = 0
	// SyncSynced means the most recent upload attempt was confirmed by the server.
	SyncSynced SyncState = 1
)

func (s SyncState) String() string {
	if s == SyncSynced {
		return "synced"
	}
	return "pending"
}

// Speaker identifies one side of the two-party chat.
type Speaker string

const (
	SpeakerSelf      Speaker = "self"
	SpeakerAssistant Speaker = "assistant"
)
