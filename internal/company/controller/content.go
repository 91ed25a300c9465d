package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/gartstein/insightdesk/internal/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TextSubmission is plain text pasted in by a user.
type TextSubmission struct {
	UserID    string
	Title     string
	Text      string
	CompanyID *uuid.UUID
}

// ProcessText stores directly submitted text as a completed content item.
// The text is its own transcription, so no processing step is queued.
func (s *CompanyService) ProcessText(ctx context.Context, sub TextSubmission) (*models.ContentItem, error) {
	if sub.UserID == "" || strings.TrimSpace(sub.Title) == "" || strings.TrimSpace(sub.Text) == "" {
		return nil, fmt.Errorf("%w: title, text and user are required", e.ErrInvalidInput)
	}

	id := uuid.New()
	item := &models.ContentItem{
		ID:          id,
		Title:       sub.Title,
		Description: fmt.Sprintf("Direct text input - %d characters", len([]rune(sub.Text))),
		ContentType: models.ContentText,
		Source:      models.SourceDirectInput,
		Status:      models.StatusCompleted,
		UserID:      sub.UserID,
		CompanyID:   sub.CompanyID,
		ProcessedAt: utils.Ptr(time.Now().UTC()),
		Transcription: &models.Transcription{
			ID:            uuid.New(),
			ContentItemID: id,
			Content:       sub.Text,
			Language:      "en",
			Confidence:    1.0,
			WordCount:     len(strings.Fields(sub.Text)),
		},
	}

	if err := s.repo.CreateContent(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to process text: %w", err)
	}
	s.logger.Info("Text content processed",
		zap.String("content_id", id.String()),
		zap.Int("word_count", item.Transcription.WordCount),
	)
	return item, nil
}

// GetContent returns a content item owned by userID.
func (s *CompanyService) GetContent(ctx context.Context, userID string, id uuid.UUID) (*models.ContentItem, error) {
	if userID == "" {
		return nil, e.ErrUnauthorized
	}
	item, err := s.repo.GetContent(ctx, userID, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return item, nil
}
