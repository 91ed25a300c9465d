// Authentication service: registers users and issues the JWT tokens the
// company service expects.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gartstein/insightdesk/internal/company/auth"
	"github.com/gartstein/insightdesk/internal/company/config"
	gorm "github.com/gartstein/insightdesk/internal/company/db"
	e "github.com/gartstein/insightdesk/internal/company/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token string `json:"token"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "authentication",
		Short:        "Account signup and token service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	repo, err := gorm.NewRepository(cfg.Database())
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	accounts := auth.NewAccounts(repo, cfg.JWTSecret, cfg.TokenTTL, logger)

	addr := fmt.Sprintf(":%d", cfg.AuthPort)
	logger.Info("Authentication service running", zap.String("addr", addr))
	return http.ListenAndServe(addr, newMux(accounts, logger))
}

func newMux(accounts *auth.Accounts, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", signupHandler(accounts, logger))
	mux.HandleFunc("POST /token", tokenHandler(accounts))
	return mux
}

func signupHandler(accounts *auth.Accounts, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.Signup
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		user, err := accounts.Register(r.Context(), req)
		switch {
		case errors.Is(err, e.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, e.ErrDuplicateEmail):
			http.Error(w, "email already registered", http.StatusConflict)
			return
		case err != nil:
			logger.Error("Signup failed", zap.Error(err))
			http.Error(w, "signup failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// tokenHandler exchanges credentials for a JWT.
func tokenHandler(accounts *auth.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		token, err := accounts.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, e.ErrUnauthorized) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "failed to generate token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{Token: token})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
