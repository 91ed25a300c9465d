package db

import (
	"context"
	"errors"
	"strings"

	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateContent stores a content item together with its transcription.
func (r *Repository) CreateContent(ctx context.Context, item *models.ContentItem) error {
	return e.Storage("create content", r.db.WithContext(ctx).Create(item).Error)
}

// GetContent returns the content item with id owned by userID.
func (r *Repository) GetContent(ctx context.Context, userID string, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	result := r.db.WithContext(ctx).
		Preload("Transcription").
		Where("id = ? AND user_id = ?", id, userID).
		First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, e.Storage("get content", result.Error)
	}
	return &item, nil
}

// SearchContent returns up to limit content items owned by userID whose
// title, description or transcription contains query, ignoring case,
// newest first.
func (r *Repository) SearchContent(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var items []models.ContentItem
	err := r.db.WithContext(ctx).
		Preload("Transcription").
		Joins("LEFT JOIN transcriptions ON transcriptions.content_item_id = content_items.id").
		Where("content_items.user_id = ?", userID).
		Where("(LOWER(content_items.title) LIKE ? ESCAPE '\\' OR LOWER(content_items.description) LIKE ? ESCAPE '\\' OR LOWER(transcriptions.content) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern).
		Order("content_items.created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, e.Storage("search content", err)
	}
	return items, nil
}
