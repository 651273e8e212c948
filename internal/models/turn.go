package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one recorded utterance in the conversation. Immutable once
// appended; AudioFile is set only on assistant turns that have a
// synthesized recording.
type Turn struct {
	Role      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	AudioFile string    `json:"audio_file,omitempty"`
}
