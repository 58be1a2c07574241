package domain

import (
	"time"

	"gorm.io/gorm"
)

// StreamModel is the GORM model for the streams table.
type StreamModel struct {
	UID           string `gorm:"type:varchar(36);primaryKey"`
	OwnerID       string `gorm:"type:varchar(36);index;not null"`
	OwnerUsername string `gorm:"type:varchar(50);not null"`
	Title         string `gorm:"type:varchar(200);not null"`
	Status        string `gorm:"type:varchar(20);index;not null;default:'offline'"`
	PlaybackURL   string `gorm:"type:varchar(500)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for StreamModel.
func (StreamModel) TableName() string {
	return "streams"
}

// ToDomain converts StreamModel to a domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		UID:           m.UID,
		OwnerID:       m.OwnerID,
		OwnerUsername: m.OwnerUsername,
		Title:         m.Title,
		Status:        StreamStatus(m.Status),
		PlaybackURL:   m.PlaybackURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// StreamToModel converts a domain Stream to StreamModel.
func StreamToModel(s *Stream) *StreamModel {
	return &StreamModel{
		UID:           s.UID,
		OwnerID:       s.OwnerID,
		OwnerUsername: s.OwnerUsername,
		Title:         s.Title,
		Status:        string(s.Status),
		PlaybackURL:   s.PlaybackURL,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
