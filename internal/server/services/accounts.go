// Package services contains the server-side business logic. AccountService
// composes the account store with password hashing and token issuance to
// implement registration, login, token rotation and profile management.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Public messages of the flow errors.
const (
	MsgEmailTaken          = "email already registered"
	MsgInvalidCredentials  = "invalid credentials"
	MsgInvalidRefreshToken = "invalid refresh token"
	MsgInvalidAuth         = "invalid authentication credentials"
	MsgUserNotFound        = "user not found"
	MsgAdminRequired       = "admin access required"
)

// PasswordHasher is implemented by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

// TokenIssuer is implemented by auth.Issuer.
type TokenIssuer interface {
	IssueAccess(subject string, now time.Time, ttl time.Duration) (string, error)
	IssueRefresh(subject string, now time.Time, ttl time.Duration) (string, error)
}

// TokenVerifier is implemented by auth.Verifier.
type TokenVerifier interface {
	Verify(token string, now time.Time) (models.TokenClaims, error)
}

// AccountService runs the account flows. It holds no mutable state of its
// own; the store is the only shared resource.
type AccountService struct {
	repo       users.Repository
	hasher     PasswordHasher
	issuer     TokenIssuer
	verifier   TokenVerifier
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     logging.Logger
	now        func() time.Time
}

// NewAccountService wires the service. accessTTL and refreshTTL are the
// lifetimes given to newly minted tokens.
func NewAccountService(
	repo users.Repository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	verifier TokenVerifier,
	accessTTL, refreshTTL time.Duration,
	logger logging.Logger,
) *AccountService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccountService{
		repo:       repo,
		hasher:     hasher,
		issuer:     issuer,
		verifier:   verifier,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With("module", "accounts"),
		now:        time.Now,
	}
}

// Register creates an account for email. An email already in use yields a
// Conflict error, whether it is seen up front or reported by the store.
func (s *AccountService) Register(ctx context.Context, email, password, fullName string) (*models.Account, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.NewError(common.ErrorConflict, MsgEmailTaken)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	account, err := s.repo.Create(ctx, email, hash, fullName)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, MsgEmailTaken)
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "email", account.Email)
	return account, nil
}

// Login checks the credentials and mints a token pair. Unknown email and
// wrong password produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "login rejected", "reason", "unknown account")
			return nil, common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Debug(ctx, "login rejected", "reason", "password mismatch", "account_id", account.ID)
		return nil, common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}

	return s.issuePair(account.Email)
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token stays usable until it expires, and the account is not re-checked.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.verifier.Verify(refreshToken, s.now())
	if err != nil {
		return nil, common.NewError(common.ErrorUnauthorized, MsgInvalidRefreshToken)
	}
	return s.issuePair(claims.Subject)
}

// AuthenticateFromToken resolves the account an access token was issued to.
func (s *AccountService) AuthenticateFromToken(ctx context.Context, accessToken string) (*models.Account, error) {
	claims, err := s.verifier.Verify(accessToken, s.now())
	if err != nil {
		return nil, common.NewError(common.ErrorUnauthorized, MsgInvalidAuth)
	}

	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorUnauthorized, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}
	return account, nil
}

// Authenticate checks an email/password pair and returns the account.
// Unlike Login it distinguishes an unknown email from a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}
	return account, nil
}

// GetByEmail returns the account registered under email.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error searching account: %w", err)
	}
	return account, nil
}

// UpdateProfile replaces the full name and/or password. A nil or empty value
// leaves the field as it is.
func (s *AccountService) UpdateProfile(ctx context.Context, account *models.Account, fullName, password *string) (*models.Account, error) {
	updated := *account

	if fullName != nil && *fullName != "" {
		updated.FullName = *fullName
	}
	if password != nil && *password != "" {
		hash, err := s.hasher.Hash(*password)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
		}
		updated.PasswordHash = hash
	}

	return s.save(ctx, &updated)
}

// GrantAdmin gives the account the admin role.
func (s *AccountService) GrantAdmin(ctx context.Context, account *models.Account) (*models.Account, error) {
	updated := *account
	updated.Role = models.RoleAdmin

	saved, err := s.save(ctx, &updated)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "admin role granted", "account_id", saved.ID)
	return saved, nil
}

// DeleteAccount removes the account and reports whether it was removed.
// Store failures are logged and reported as false.
func (s *AccountService) DeleteAccount(ctx context.Context, account *models.Account) bool {
	ok, err := s.repo.Delete(ctx, account)
	if err != nil {
		s.logger.Error(ctx, "failed to delete account", "account_id", account.ID, "error", err)
		return false
	}
	if ok {
		s.logger.Info(ctx, "account deleted", "account_id", account.ID, "email", account.Email)
	}
	return ok
}

// ListAccounts returns every account in creation order.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return accounts, nil
}

// RequireAdmin returns a Forbidden error unless account is an admin.
func (s *AccountService) RequireAdmin(account *models.Account) error {
	if account == nil || !account.IsAdmin() {
		return common.NewError(common.ErrorForbidden, MsgAdminRequired)
	}
	return nil
}

func (s *AccountService) save(ctx context.Context, account *models.Account) (*models.Account, error) {
	saved, err := s.repo.Save(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error saving account: %w", err)
	}
	return saved, nil
}

func (s *AccountService) issuePair(subject string) (*models.TokenPair, error) {
	now := s.now()

	access, err := s.issuer.IssueAccess(subject, now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %v", common.ErrorInternal, err)
	}
	refresh, err := s.issuer.IssueRefresh(subject, now, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token: %v", common.ErrorInternal, err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    common.TokenTypeBearer,
	}, nil
}
