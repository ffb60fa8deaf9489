package handlers

import (
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"autosalon/internal/config"
	"autosalon/internal/domain"
	"autosalon/internal/metrics"
	"autosalon/internal/repos"
	"autosalon/internal/security"
	"autosalon/internal/services"
)

type Deps struct {
	Auth    *services.AuthService
	Metrics *metrics.Metrics

	AuthHandler     *AuthHandler
	CarHandler      *RecordHandler[domain.Car]
	CustomerHandler *RecordHandler[domain.Customer]
	HealthHandler   *HealthHandler

	// AccessLog receives one line per request. Nil means stdout.
	AccessLog io.Writer
}

func NewDeps(db *sqlx.DB, cfg config.Config, m *metrics.Metrics) (*Deps, error) {
	hasher, err := security.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("deps: %w", err)
	}
	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("deps: %w", err)
	}

	userRepo := repos.NewUserRepo(db)
	carRepo := repos.NewCarRepo(db)
	customerRepo := repos.NewCustomerRepo(db)

	authSvc := services.NewAuthService(userRepo, hasher, tokens)
	carSvc := services.NewCarService(carRepo)
	customerSvc := services.NewCustomerService(customerRepo)

	return &Deps{
		Auth:            authSvc,
		Metrics:         m,
		AuthHandler:     &AuthHandler{Auth: authSvc, Metrics: m},
		CarHandler:      NewCarHandler(carSvc),
		CustomerHandler: NewCustomerHandler(customerSvc),
		HealthHandler:   &HealthHandler{DB: db},
	}, nil
}
