package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"food-delivery/internal/domain"
	tokenrepo "food-delivery/internal/repository/token"
	userrepo "food-delivery/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken indicates the presented token is unknown or expired.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles account signup, login and profile flows.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	tokenRepo   tokenrepo.Repository
	tokenTTL    time.Duration
	passwordMin int
	logger      *log.Logger
}

// New creates a Service. A zero ttl falls back to 24 hours.
func New(repo userrepo.Repository, tokens tokenrepo.Repository, ttl time.Duration, logger *log.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		tokenRepo:   tokens,
		tokenTTL:    ttl,
		passwordMin: 8,
		logger:      logger,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
}

// Session is an issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Signup registers a user and signs them in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, Session{}, err
	}
	if strings.TrimSpace(in.Fullname) == "" {
		return nil, Session{}, fmt.Errorf("%w: fullname required", domain.ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, Session{}, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Session{}, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Fullname:     strings.TrimSpace(in.Fullname),
		Email:        email,
		PasswordHash: string(hashed),
		Contact:      strings.TrimSpace(in.Contact),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, Session{}, fmt.Errorf("user already exists with this email: %w", err)
		}
		return nil, Session{}, err
	}
	sess, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.logger.Printf("user service: signup user_id=%s", u.ID)
	return u, sess, nil
}

// Login validates credentials and returns an access token plus the user.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, Session, error) {
	password = strings.TrimSpace(password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, Session{}, ErrInvalidCredentials
	}
	sess, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		s.logger.Printf("user service: touch last login user_id=%s error=%v", u.ID, err)
	} else {
		now := time.Now().UTC()
		u.LastLogin = &now
	}
	return u, sess, nil
}

// Logout revokes the token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Fullname       string `json:"fullname"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Country        string `json:"country"`
	ProfilePicture string `json:"profilePicture"`
}

// UpdateProfile replaces the editable profile fields. Empty name or email
// keep the stored value.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	upd := userrepo.ProfileUpdate{
		Fullname:       strings.TrimSpace(in.Fullname),
		Email:          current.Email,
		Address:        strings.TrimSpace(in.Address),
		City:           strings.TrimSpace(in.City),
		Country:        strings.TrimSpace(in.Country),
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
	}
	if upd.Fullname == "" {
		upd.Fullname = current.Fullname
	}
	if strings.TrimSpace(in.Email) != "" {
		if upd.Email, err = normalizeEmail(in.Email); err != nil {
			return nil, err
		}
	}
	return s.repo.UpdateProfile(ctx, userID, upd)
}

// PurgeExpiredTokens drops tokens past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, time.Now())
}

// TokenTTL exposes the access token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *Service) issue(ctx context.Context, userID string) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(ctx, userID, s.tokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, min)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrInvalidInput)
	}
	return nil
}
