package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Signup is the data needed to open an account.
type Signup struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
}

// Accounts registers users and exchanges credentials for tokens.
type Accounts struct {
	store    UserStore
	secret   string
	tokenTTL time.Duration
	cost     int
	logger   *zap.Logger
}

func NewAccounts(store UserStore, secret string, tokenTTL time.Duration, logger *zap.Logger) *Accounts {
	return &Accounts{
		store:    store,
		secret:   secret,
		tokenTTL: tokenTTL,
		cost:     bcryptCost,
		logger:   logger.Named("accounts"),
	}
}

// Register stores a new user with a bcrypt password hash.
func (a *Accounts) Register(ctx context.Context, s Signup) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", e.ErrInvalidInput)
	}
	if len(s.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", e.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		CompanyName:  s.CompanyName,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (a *Accounts) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return "", e.ErrUnauthorized
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", e.ErrUnauthorized
	}

	return GenerateToken(user.ID.String(), a.secret, a.tokenTTL)
}
