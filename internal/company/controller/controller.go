// Package controller implements the core business logic (service layer)
// for company records: the create/merge/reject submission policy,
// lookups, enrichment orchestration and text ingestion, sending the
// relevant events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gartstein/insightdesk/internal/company/completeness"
	"github.com/gartstein/insightdesk/internal/company/db"
	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/events"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// Enricher fetches a company profile from an external intelligence source.
type Enricher interface {
	Enrich(ctx context.Context, name string) (*models.Company, error)
}

// Repository defines the storage interface for Company objects.
type Repository interface {
	UpsertCompany(ctx context.Context, candidate *models.Company, resolve db.ResolveFunc) (*models.Company, bool, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	SearchCompanies(ctx context.Context, query string, companyType models.CompanyType) ([]models.Company, error)
	CreateContent(ctx context.Context, item *models.ContentItem) error
	GetContent(ctx context.Context, userID string, id uuid.UUID) (*models.ContentItem, error)
	SearchContent(ctx context.Context, userID, query string, limit int) ([]models.ContentItem, error)
}

// Outcome is the result of a successful submission.
type Outcome string

const (
	Created Outcome = "CREATED"
	Merged  Outcome = "MERGED"
)

// SubmitResult carries the stored record and how it got there.
type SubmitResult struct {
	Outcome      Outcome
	Company      *models.Company
	Completeness completeness.Report
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     Repository
	producer EventProducer
	enricher Enricher
	policy   completeness.Policy
	logger   *zap.Logger
}

// Option customizes a CompanyService.
type Option func(*CompanyService)

// WithPolicy overrides the completeness thresholds.
func WithPolicy(p completeness.Policy) Option {
	return func(s *CompanyService) { s.policy = p }
}

// WithEnricher enables EnrichCompany.
func WithEnricher(en Enricher) Option {
	return func(s *CompanyService) { s.enricher = en }
}

// NewCompanyService constructs a CompanyService with a repository,
// an event producer, and a logger.
func NewCompanyService(repo Repository, producer EventProducer, logger *zap.Logger, opts ...Option) *CompanyService {
	s := &CompanyService{
		repo:     repo,
		producer: producer,
		policy:   completeness.DefaultPolicy,
		logger:   logger.Named("company_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the completeness policy in use.
func (s *CompanyService) Policy() completeness.Policy {
	return s.policy
}

// SubmitCompany creates a company under a new name, merges the
// submitted fields into an incomplete record with the same name, or
// rejects the submission when the stored record is already complete.
func (s *CompanyService) SubmitCompany(ctx context.Context, company *models.Company) (*SubmitResult, error) {
	if company == nil || strings.TrimSpace(company.Name) == "" {
		return nil, fmt.Errorf("%w: name required", e.ErrInvalidInput)
	}
	if company.Type != "" && !company.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown company type %q", e.ErrInvalidInput, company.Type)
	}

	// The name is the identity key and is matched exactly, padding included.
	incoming := *company
	incoming.ClearBookkeeping()

	candidate := incoming
	if candidate.Type == "" {
		candidate.Type = models.Supplier
	}

	stored, created, err := s.repo.UpsertCompany(ctx, &candidate, func(existing *models.Company) (*models.Company, error) {
		if s.policy.IsFullyPopulated(existing) {
			return nil, fmt.Errorf("%w: %q", e.ErrDuplicateComplete, existing.Name)
		}
		existing.MergeFrom(&incoming)
		return existing, nil
	})
	if err != nil {
		if errors.Is(err, e.ErrDuplicateComplete) {
			s.logger.Info("Rejected submission for complete company", zap.String("name", incoming.Name))
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit company: %w", err)
	}

	result := &SubmitResult{
		Outcome:      Merged,
		Company:      stored,
		Completeness: s.policy.Evaluate(stored),
	}
	eventType := events.CompanyMerged
	if created {
		result.Outcome = Created
		eventType = events.CompanyCreated
	}

	s.logger.Info("Company submitted",
		zap.String("name", stored.Name),
		zap.String("company_id", stored.ID.String()),
		zap.String("outcome", string(result.Outcome)),
	)
	go func() {
		s.producer.Produce(eventType, stored)
	}()
	return result, nil
}

// GetCompany retrieves a Company by ID together with its completeness report.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, completeness.Report, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, completeness.Report{}, err
		}
		return nil, completeness.Report{}, fmt.Errorf("failed to get company: %w", err)
	}
	return company, s.policy.Evaluate(company), nil
}

// RelatedContentLimit caps the content items returned by a search.
const RelatedContentLimit = 10

// SearchResult holds the companies matching a query and the caller's own
// content items that mention it, newest first.
type SearchResult struct {
	Query          string
	Companies      []models.Company
	RelatedContent []models.ContentItem
}

// SearchCompanies finds companies whose name contains query, ignoring
// case, together with userID's content mentioning query in its title,
// description or transcription.
func (s *CompanyService) SearchCompanies(ctx context.Context, userID, query string, companyType models.CompanyType) (*SearchResult, error) {
	if userID == "" {
		return nil, e.ErrUnauthorized
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", e.ErrInvalidInput)
	}
	if companyType != "" && !companyType.Valid() {
		return nil, fmt.Errorf("%w: unknown company type %q", e.ErrInvalidInput, companyType)
	}

	companies, err := s.repo.SearchCompanies(ctx, query, companyType)
	if err != nil {
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}
	related, err := s.repo.SearchContent(ctx, userID, query, RelatedContentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}
	return &SearchResult{Query: query, Companies: companies, RelatedContent: related}, nil
}

// EnrichCompany asks the enricher for a profile of name. With save set
// the profile goes through SubmitCompany and the submission result is
// returned alongside the preview.
func (s *CompanyService) EnrichCompany(ctx context.Context, name string, save bool) (*models.Company, *SubmitResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, fmt.Errorf("%w: company name required", e.ErrInvalidInput)
	}
	if s.enricher == nil {
		return nil, nil, errors.New("enrichment is not configured")
	}

	profile, err := s.enricher.Enrich(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to enrich company: %w", err)
	}
	if !save {
		return profile, nil, nil
	}

	result, err := s.SubmitCompany(ctx, profile)
	if err != nil {
		return profile, nil, err
	}
	return profile, result, nil
}
