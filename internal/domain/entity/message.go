package entity

import "github.com/google/uuid"

// VideoProcessingMessage is the inbound message from the video.processing queue.
type VideoProcessingMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	UserID    string    `json:"user_id"`
	VideoKey  string    `json:"video_key"`
	Profile   string    `json:"profile,omitempty"`
	FileSize  int64     `json:"file_size"`
	UserEmail string    `json:"user_email"`
}

// PackageStatusMessage is the outbound message published to the package.status queue.
type PackageStatusMessage struct {
	JobID         uuid.UUID `json:"job_id"`
	UserID        string    `json:"user_id"`
	Status        JobStatus `json:"status"`
	VideoKey      string    `json:"video_key"`
	PackageKey    string    `json:"package_key,omitempty"`
	KeyframeCount int       `json:"keyframe_count,omitempty"`
	SceneCount    int       `json:"scene_count,omitempty"`
	HasTranscript bool      `json:"has_transcript,omitempty"`
	Duration      float64   `json:"duration_seconds,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Attempt       int       `json:"attempt"`
	MaxAttempts   int       `json:"max_attempts"`
}
