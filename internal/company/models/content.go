package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType is the media kind of an ingested content item.
type ContentType string

const (
	ContentAudio       ContentType = "AUDIO"
	ContentVideo       ContentType = "VIDEO"
	ContentBlogArticle ContentType = "BLOG_ARTICLE"
	ContentText        ContentType = "TEXT"
)

// ContentSource records how a content item entered the system.
type ContentSource string

const (
	SourceFileUpload  ContentSource = "FILE_UPLOAD"
	SourceBlogURL     ContentSource = "BLOG_URL"
	SourceDirectInput ContentSource = "DIRECT_INPUT"
)

// ProcessingStatus tracks transcription progress of a content item.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "PENDING"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusCompleted  ProcessingStatus = "COMPLETED"
	StatusFailed     ProcessingStatus = "FAILED"
)

// ContentItem is one piece of uploaded or submitted material owned by a user.
type ContentItem struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string           `json:"title" gorm:"size:255;not null"`
	Description   string           `json:"description,omitempty" gorm:"type:text"`
	ContentType   ContentType      `json:"contentType" gorm:"size:32"`
	Source        ContentSource    `json:"source" gorm:"size:32"`
	SourceURL     string           `json:"sourceUrl,omitempty"`
	Status        ProcessingStatus `json:"status" gorm:"size:32;index"`
	UserID        string           `json:"userId" gorm:"size:64;index;not null"`
	CompanyID     *uuid.UUID       `json:"companyId,omitempty" gorm:"type:uuid;index"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty"`
	Transcription *Transcription   `json:"transcription,omitempty" gorm:"foreignKey:ContentItemID"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Transcription is the text extracted from a content item.
type Transcription struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ContentItemID uuid.UUID `json:"contentItemId" gorm:"type:uuid;uniqueIndex"`
	Content       string    `json:"content" gorm:"type:text"`
	Language      string    `json:"language" gorm:"size:16"`
	Confidence    float64   `json:"confidence"`
	WordCount     int       `json:"wordCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
