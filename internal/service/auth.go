package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/events"
	"github.com/Skotchmaster/furniture_shop/internal/hash"
	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/repo"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
	"github.com/Skotchmaster/furniture_shop/internal/transport"
)

const minPasswordLen = 8

type AuthService struct {
	Repo          *repo.GormRepo
	Events        events.Publisher
	JWTSecret     []byte
	RefreshSecret []byte
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Account      *models.Account
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email: %w", ErrValidation)
	}
	return nil
}

// sign issues an access/refresh pair and the refresh record to persist.
func (s *AuthService) sign(acc *models.Account) (*LoginResult, *models.RefreshToken, error) {
	accessExp := time.Now().Add(tokens.AccessTTL)
	access, err := tokens.SignAccess(s.JWTSecret, acc.ID.String(), acc.Role, accessExp)
	if err != nil {
		return nil, nil, err
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refresh, jti, err := tokens.SignRefresh(s.RefreshSecret, acc.ID.String(), refreshExp)
	if err != nil {
		return nil, nil, err
	}

	rec := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		AccountID: acc.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Account:      acc,
	}, rec, nil
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	acc := &models.Account{
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}

	var res *LoginResult
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateAccountIfNotExists(ctx, acc); err != nil {
			return err
		}
		var rec *models.RefreshToken
		res, rec, err = s.sign(acc)
		if err != nil {
			return err
		}
		return tx.AddRefreshToken(ctx, rec)
	})
	if errors.Is(err, repo.ErrAccountExists) {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicAccounts, acc.ID.String(), "account_registered", map[string]any{
		"account_id": acc.ID,
		"email":      acc.Email,
	})
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acc, err := s.Repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(acc.PasswordHash, password) {
		return nil, fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	}
	res, rec, err := s.sign(acc)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, rec); err != nil {
		return nil, err
	}
	return res, nil
}

// Refresh rotates a refresh token. Each refresh token is accepted once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("missing refresh token: %w", ErrUnauthorized)
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	acc, err := s.Repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account not found: %w", ErrUnauthorized)
		}
		return nil, err
	}

	res, next, err := s.sign(acc)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, refreshToken, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token expired or revoked: %w", ErrUnauthorized)
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, refreshToken)
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	acc, err := s.Repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "account")
	}
	return acc, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (*models.Account, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name required: %w", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	acc, err := s.Repo.UpdateAccount(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "account")
	}
	return acc, nil
}

// ChangePassword verifies the old password, stores the new hash and revokes
// every refresh token of the account.
func (s *AuthService) ChangePassword(ctx context.Context, id uuid.UUID, req transport.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}
	acc, err := s.Repo.GetAccountByID(ctx, id)
	if err != nil {
		return notFound(err, "account")
	}
	if !hash.CheckPassword(acc.PasswordHash, req.OldPassword) {
		return fmt.Errorf("old password does not match: %w", ErrForbidden)
	}
	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.UpdateAccount(ctx, id, map[string]any{"password_hash": pwHash}); err != nil {
			return err
		}
		return tx.RevokeAllRefreshTokens(ctx, id)
	})
}

// EnsureAdmin creates the bootstrap admin, or promotes an existing account
// with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	l := logging.FromContext(ctx).With("svc", "auth.ensure_admin")

	acc, err := s.Repo.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		if acc.Role == models.RoleAdmin {
			return nil
		}
		_, err = s.Repo.UpdateAccount(ctx, acc.ID, map[string]any{"role": models.RoleAdmin})
		if err == nil {
			l.Info("admin_promoted", "email", email)
		}
		return err
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.Account{Email: email, Name: "Administrator", PasswordHash: pwHash, Role: models.RoleAdmin}
	if err := s.Repo.CreateAccountIfNotExists(ctx, admin); err != nil && !errors.Is(err, repo.ErrAccountExists) {
		return err
	}
	l.Info("admin_created", "email", email)
	return nil
}
