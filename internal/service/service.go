package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/config"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/integrations/cbr"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/middleware"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/repository"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/valuation"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("user ID not found in context")
	ErrIntegrity          = errors.New("bond record failed integrity check")
	ErrConflict           = errors.New("already registered")
)

// Store is the persistence the service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateBond(ctx context.Context, bond *models.BondRecord) error
	GetBond(ctx context.Context, userID int64, id string) (*models.BondRecord, error)
	ListBonds(ctx context.Context, userID int64) ([]models.BondRecord, error)
	DeleteBond(ctx context.Context, userID int64, id string) error
}

// RateSource supplies the reference rate suggested as COK
type RateSource interface {
	GetReferenceRate(ctx context.Context) (cbr.ReferenceRate, error)
}

// Mailer delivers rendered reports
type Mailer interface {
	SendReport(to, username string, rep report.Report) error
}

// Service handles business logic
type Service struct {
	repo   Store
	rates  RateSource
	mailer Mailer
	calc   *valuation.Calculator
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(repo Store, rates RateSource, mailer Mailer, log *logrus.Logger, cfg *config.Config) (*Service, error) {
	policy, err := valuation.ParseTotalGracePolicy(cfg.TotalGraceInterest)
	if err != nil {
		return nil, fmt.Errorf("failed to configure calculator: %w", err)
	}
	calc := valuation.NewCalculator(valuation.Options{
		Precision:  cfg.DecimalPrecision,
		TotalGrace: policy,
		Solver: valuation.SolverOptions{
			Tolerance:     cfg.IRRTolerance,
			MaxIterations: cfg.IRRMaxIterations,
		},
	})
	return &Service{repo: repo, rates: rates, mailer: mailer, calc: calc, log: log, config: cfg}, nil
}

func userID(ctx context.Context) (int64, error) {
	id, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must have at least 8 characters", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email %s", ErrConflict, email)
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.JWTTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
