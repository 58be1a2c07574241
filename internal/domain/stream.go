package domain

import (
	"time"
)

// StreamStatus represents stream lifecycle status.
type StreamStatus string

const (
	StreamStatusOffline StreamStatus = "offline"
	StreamStatusActive  StreamStatus = "active"
)

// Stream is a stream record as stored in the directory.
type Stream struct {
	UID           string       `json:"uid"`
	OwnerID       string       `json:"ownerId"`
	OwnerUsername string       `json:"ownerUsername"`
	Title         string       `json:"title"`
	Status        StreamStatus `json:"status"`
	PlaybackURL   string       `json:"playbackUrl"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// StreamSummary is one entry of the active-streams snapshot: a directory
// record annotated with live presence data at emission time.
type StreamSummary struct {
	UID               string       `json:"uid"`
	Title             string       `json:"title"`
	OwnerID           string       `json:"ownerId"`
	OwnerUsername     string       `json:"ownerUsername"`
	Status            StreamStatus `json:"status"`
	PlaybackURL       string       `json:"playbackUrl"`
	ViewerCount       int          `json:"viewerCount"`
	BroadcasterAvatar string       `json:"broadcasterAvatar,omitempty"`
}
