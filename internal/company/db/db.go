// Package db implements the gorm-backed storage for companies, content
// items and user accounts.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string
}

// ResolveFunc decides what happens to an existing record with the
// candidate's name. It returns the record to write back, or an error to
// abort the upsert without writing.
type ResolveFunc func(existing *models.Company) (*models.Company, error)

func dialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Migrate creates or updates the schema of every stored model.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(
		&models.Company{},
		&models.ContentItem{},
		&models.Transcription{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// UpsertCompany creates candidate when no company with its name exists,
// otherwise hands the stored record to resolve and writes the result
// back. The read-check-write runs in one transaction. A concurrent
// creator of the same name makes the insert a no-op and the call falls
// through to resolve. Merges are version-guarded; losing a race yields
// ErrConflict. The returned flag is true when a record was created.
func (r *Repository) UpsertCompany(ctx context.Context, candidate *models.Company, resolve ResolveFunc) (*models.Company, bool, error) {
	var (
		stored  *models.Company
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByName(tx, candidate.Name)
		if err != nil && !errors.Is(err, e.ErrNotFound) {
			return e.Storage("lookup company", err)
		}

		if existing == nil {
			if candidate.ID == uuid.Nil {
				candidate.ID = uuid.New()
			}
			candidate.Version = 1
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).Create(candidate)
			if result.Error != nil {
				return e.Storage("create company", result.Error)
			}
			if result.RowsAffected == 1 {
				stored, created = candidate, true
				return nil
			}
			// Lost the insert race; merge into the winner instead.
			existing, err = findByName(tx, candidate.Name)
			if err != nil {
				return e.Storage("lookup company", err)
			}
		}

		next, err := resolve(existing)
		if err != nil {
			return err
		}

		prev := existing.Version
		next.ID = existing.ID
		next.Name = existing.Name
		next.CreatedAt = existing.CreatedAt
		next.Version = prev + 1

		result := tx.Model(&models.Company{}).
			Where("id = ? AND version = ?", existing.ID, prev).
			Select("*").
			Omit("id", "created_at").
			Updates(next)
		if result.Error != nil {
			return e.Storage("update company", result.Error)
		}
		if result.RowsAffected == 0 {
			return e.Storage("update company", e.ErrConflict)
		}
		stored = next
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func findByName(tx *gorm.DB, name string) (*models.Company, error) {
	var company models.Company
	result := tx.Where("name = ?", name).Limit(1).Find(&company)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, e.ErrNotFound
	}
	return &company, nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	result := r.db.WithContext(ctx).First(&company, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, e.Storage("get company", result.Error)
	}
	return &company, nil
}

func (r *Repository) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	company, err := findByName(r.db.WithContext(ctx), name)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, e.Storage("get company by name", err)
	}
	return company, nil
}

// SearchCompanies matches query as a case-insensitive substring of the
// company name, optionally restricted to one type, ordered by name.
func (r *Repository) SearchCompanies(ctx context.Context, query string, companyType models.CompanyType) ([]models.Company, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	tx := r.db.WithContext(ctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern)
	if companyType != "" {
		tx = tx.Where("type = ?", companyType)
	}

	var companies []models.Company
	if err := tx.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, e.Storage("search companies", err)
	}
	return companies, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// Exec runs a raw statement, for maintenance tasks such as test cleanup.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	if err := r.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return e.Storage("exec", err)
	}
	return nil
}
