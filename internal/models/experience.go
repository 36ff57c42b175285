package models

import "time"

// Photo is one photo attached to an experience. Records hold only the blob
// manager's filename; the bytes themselves live with the blob manager.
type Photo struct {
	Filename string
	Caption  string
}

// Experience is a recorded memory: text, optional place and rating, optional
// emotion, and an ordered list of photo references.
//
// ExperiencedAt is the moment being recorded, not the moment it was saved;
// its timezone offset is preserved end to end.
type Experience struct {
	ID          string
	Title       string
	Description string
	Photos      []Photo

	Latitude  *float64
	Longitude *float64
	PlaceName *string
	Area      *string

	Rating           *int // 1..10
	Emotion          *string
	EmotionIntensity *int // 1..10

	Mood            *string
	Importance      *string
	MemorableMoment *string

	ExperiencedAt time.Time
	CreatedAt     time.Time
	SyncState     SyncState
}

// PhotoFilenames returns the ordered filenames referenced by the experience.
func (e *Experience) PhotoFilenames() []string {
	names := make([]string, len(e.Photos))
	for i, p := range e.Photos {
		names[i] = p.Filename
	}
	return names
}

// EmotionCapture is a standalone emotion check-in. The label is free-form
// text, not an enum.
type EmotionCapture struct {
	ID        string
	Emotion   string
	Intensity int // 1..10
	Context   *string
	CreatedAt time.Time
	SyncState SyncState
}

// ChatMessage is one turn of the two-party conversation.
type ChatMessage struct {
	ID        string
	Speaker   Speaker
	Text      string
	Emotion   *string
	CreatedAt time.Time
	SyncState SyncState
}
