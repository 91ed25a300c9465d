package db

import (
	"context"
	"sync"
	"testing"
	"time"

	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open test database")

	// Every pooled connection would get its own :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	require.NoError(t, repo.Migrate(), "failed to migrate test database")
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func keepExisting(existing *models.Company) (*models.Company, error) {
	return existing, nil
}

// TestUpsertCompanyCreates tests the creation of a new company record.
func TestUpsertCompanyCreates(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	company := &models.Company{Name: "Acme", Type: models.Supplier, Products: []string{"Anvil"}}
	stored, created, err := repo.UpsertCompany(ctx, company, keepExisting)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Equal(t, 1, stored.Version)

	retrieved, err := repo.GetCompany(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", retrieved.Name)
	assert.Equal(t, []string{"Anvil"}, retrieved.Products)
	assert.Nil(t, retrieved.SWOTAnalysis)
}

// TestUpsertCompanyResolvesExisting checks that an existing record goes
// through resolve and is written back with a bumped version.
func TestUpsertCompanyResolvesExisting(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	first, _, err := repo.UpsertCompany(ctx, &models.Company{Name: "Acme", Country: "US"}, keepExisting)
	require.NoError(t, err)

	incoming := &models.Company{Name: "Acme", Industry: "Beverages", Country: ""}
	merged, created, err := repo.UpsertCompany(ctx, incoming, func(existing *models.Company) (*models.Company, error) {
		existing.MergeFrom(incoming)
		return existing, nil
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 2, merged.Version)

	retrieved, err := repo.GetCompany(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beverages", retrieved.Industry)
	assert.Equal(t, "US", retrieved.Country, "empty value must not erase stored value")
	assert.Equal(t, 2, retrieved.Version)
}

// TestUpsertCompanyResolveError verifies that a resolve error aborts the write.
func TestUpsertCompanyResolveError(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	first, _, err := repo.UpsertCompany(ctx, &models.Company{Name: "Acme", Industry: "Food"}, keepExisting)
	require.NoError(t, err)

	_, _, err = repo.UpsertCompany(ctx, &models.Company{Name: "Acme"}, func(existing *models.Company) (*models.Company, error) {
		existing.Industry = "Changed"
		return nil, e.ErrDuplicateComplete
	})
	assert.ErrorIs(t, err, e.ErrDuplicateComplete)

	retrieved, err := repo.GetCompany(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", retrieved.Industry)
	assert.Equal(t, 1, retrieved.Version)
}

// TestUpsertCompanyConcurrentSameName submits one new name from several
// goroutines and expects a single stored record.
func TestUpsertCompanyConcurrentSameName(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	const workers = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, c, err := repo.UpsertCompany(ctx, &models.Company{Name: "Racy"}, keepExisting)
			assert.NoError(t, err)
			if c {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	companies, err := repo.SearchCompanies(ctx, "racy", "")
	require.NoError(t, err)
	assert.Len(t, companies, 1)
	assert.Equal(t, workers, companies[0].Version)
}

// TestGetCompanyNotFound verifies error handling when the company does not exist.
func TestGetCompanyNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.GetCompany(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = repo.GetCompanyByName(context.Background(), "Ghost")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestGetCompanyByNameIsCaseSensitive(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, _, err := repo.UpsertCompany(ctx, &models.Company{Name: "Acme"}, keepExisting)
	require.NoError(t, err)

	found, err := repo.GetCompanyByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)

	_, err = repo.GetCompanyByName(ctx, "acme")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestSearchCompanies checks substring matching, type filtering and ordering.
func TestSearchCompanies(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	for _, c := range []*models.Company{
		{Name: "Zeta Beverages", Type: models.Competitor},
		{Name: "alpha beverages", Type: models.Supplier},
		{Name: "Acme 100%", Type: models.Supplier},
		{Name: "Unrelated", Type: models.Supplier},
	} {
		_, _, err := repo.UpsertCompany(ctx, c, keepExisting)
		require.NoError(t, err)
	}

	names := func(cs []models.Company) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	all, err := repo.SearchCompanies(ctx, "BEVERAGES", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta Beverages", "alpha beverages"}, names(all))

	suppliers, err := repo.SearchCompanies(ctx, "beverages", models.Supplier)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha beverages"}, names(suppliers))

	literal, err := repo.SearchCompanies(ctx, "0%", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme 100%"}, names(literal))
}

func TestContentRoundTrip(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	now := time.Now()
	id := uuid.New()
	item := &models.ContentItem{
		ID:          id,
		Title:       "Q3 notes",
		ContentType: models.ContentText,
		Source:      models.SourceDirectInput,
		Status:      models.StatusCompleted,
		UserID:      "user-1",
		ProcessedAt: &now,
		Transcription: &models.Transcription{
			ID:        uuid.New(),
			Content:   "hello world",
			Language:  "en",
			WordCount: 2,
		},
	}
	require.NoError(t, repo.CreateContent(ctx, item))

	got, err := repo.GetContent(ctx, "user-1", id)
	require.NoError(t, err)
	require.NotNil(t, got.Transcription)
	assert.Equal(t, "hello world", got.Transcription.Content)
	assert.Equal(t, id, got.Transcription.ContentItemID)

	_, err = repo.GetContent(ctx, "someone-else", id)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestUpsertCompanyNameIsExact(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	plain, created, err := repo.UpsertCompany(ctx, &models.Company{Name: "Acme", Type: models.Supplier}, keepExisting)
	require.NoError(t, err)
	require.True(t, created)

	padded, created, err := repo.UpsertCompany(ctx, &models.Company{Name: " Acme ", Type: models.Supplier}, keepExisting)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, plain.ID, padded.ID)

	got, err := repo.GetCompanyByName(ctx, " Acme ")
	require.NoError(t, err)
	assert.Equal(t, padded.ID, got.ID)
}

func TestSearchContent(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newItem := func(userID, title, description, text string, age int) *models.ContentItem {
		id := uuid.New()
		item := &models.ContentItem{
			ID:          id,
			Title:       title,
			Description: description,
			ContentType: models.ContentText,
			Source:      models.SourceDirectInput,
			Status:      models.StatusCompleted,
			UserID:      userID,
			CreatedAt:   base.Add(-time.Duration(age) * time.Hour),
		}
		if text != "" {
			item.Transcription = &models.Transcription{ID: uuid.New(), ContentItemID: id, Content: text}
		}
		require.NoError(t, repo.CreateContent(ctx, item))
		return item
	}

	byTitle := newItem("user-1", "ACME kickoff", "", "", 3)
	byDescription := newItem("user-1", "Call", "met acme sales", "", 2)
	byTranscript := newItem("user-1", "Memo", "", "we should buy from Acme soon", 1)
	newItem("user-1", "Unrelated", "nothing", "nothing here", 0)
	newItem("user-2", "Acme for someone else", "", "", 0)

	items, err := repo.SearchContent(ctx, "user-1", "acme", 10)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []uuid.UUID{byTranscript.ID, byDescription.ID, byTitle.ID}, ids)
	require.NotNil(t, items[0].Transcription)
	assert.Equal(t, "we should buy from Acme soon", items[0].Transcription.Content)

	limited, err := repo.SearchContent(ctx, "user-1", "acme", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.SearchContent(ctx, "user-3", "acme", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUsers(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "john@doe.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))

	err := repo.CreateUser(ctx, &models.User{ID: uuid.New(), Email: "john@doe.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, e.ErrDuplicateEmail)

	got, err := repo.GetUserByEmail(ctx, "john@doe.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetUserByEmail(ctx, "nobody@doe.com")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestWithTransaction ensures transactions work correctly.
func TestWithTransaction(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txRepo *Repository) error {
		_, _, err := txRepo.UpsertCompany(ctx, &models.Company{Name: "Transactional"}, keepExisting)
		return err
	})
	assert.NoError(t, err)

	_, err = repo.GetCompanyByName(ctx, "Transactional")
	assert.NoError(t, err, "company should exist after transaction")
}

func TestNewRepositoryRejectsUnknownDriver(t *testing.T) {
	_, err := NewRepository(&Config{Driver: "oracle"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestNewRepositorySQLiteFile(t *testing.T) {
	repo, err := NewRepository(&Config{Driver: "sqlite", SQLitePath: t.TempDir() + "/insightdesk.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	_, created, err := repo.UpsertCompany(ctx, &models.Company{Name: "Filed"}, keepExisting)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, repo.Exec(ctx, "DELETE FROM companies"))
	_, err = repo.GetCompanyByName(ctx, "Filed")
	assert.ErrorIs(t, err, e.ErrNotFound)

	assert.Error(t, repo.Exec(ctx, "DELETE FROM no_such_table"))
}
