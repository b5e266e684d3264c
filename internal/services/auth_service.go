package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/notify"
	"github.com/arhammunir1104/ecom-sub001/internal/otp"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/rolesync"
)

// AuthConfig carries the signing secret and the per-flow expiry windows.
// The windows are configuration, not universal constants: login and reset
// codes live 10 minutes by default, the one-shot reset token 30.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	LoginOTPTTL   time.Duration
	ResetOTPTTL   time.Duration
	ResetTokenTTL time.Duration
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.LoginOTPTTL <= 0 {
		c.LoginOTPTTL = 10 * time.Minute
	}
	if c.ResetOTPTTL <= 0 {
		c.ResetOTPTTL = 10 * time.Minute
	}
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = 30 * time.Minute
	}
	return c
}

// LoginResult is either a final session or a two-factor-required partial
// payload.
type LoginResult struct {
	TwoFactorRequired bool         `json:"two_factor_required"`
	Token             string       `json:"token,omitempty"`
	User              *models.User `json:"user,omitempty"`
}

// resetGrant is a one-shot authorization minted by a verified reset code.
type resetGrant struct {
	email     string
	expiresAt time.Time
}

// AuthService handles registration, login with optional two-factor
// verification, 2FA lifecycle, and the OTP + token password-reset flow.
type AuthService struct {
	users    repositories.UserRepository
	docs     repositories.DocumentStore
	resolver *identity.Resolver
	syncer   *rolesync.Synchronizer
	codes    *otp.Authenticator
	notifier notify.Notifier
	provider identity.Provider
	cfg      AuthConfig

	mu          sync.Mutex
	resetGrants map[string]resetGrant
	now         func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repositories.UserRepository,
	docs repositories.DocumentStore,
	resolver *identity.Resolver,
	syncer *rolesync.Synchronizer,
	codes *otp.Authenticator,
	notifier notify.Notifier,
	provider identity.Provider,
	cfg AuthConfig,
) *AuthService {
	if provider == nil {
		provider = identity.NoopProvider{}
	}
	return &AuthService{
		users:       users,
		docs:        docs,
		resolver:    resolver,
		syncer:      syncer,
		codes:       codes,
		notifier:    notifier,
		provider:    provider,
		cfg:         cfg.withDefaults(),
		resetGrants: make(map[string]resetGrant),
		now:         time.Now,
	}
}

// Register creates a canonical record with a hashed password and mirrors the
// profile to the document store best-effort.
func (s *AuthService) Register(ctx context.Context, user *models.User, password string) error {
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("%w: %s", ErrEmailInUse, user.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("%w: %s", ErrEmailInUse, user.Email)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	if derr := s.docs.Set(ctx, repositories.ColUsers, user.DocumentKey(), user.ToDocument()); derr != nil {
		log.Printf("auth: document mirror of user %d failed: %v", user.ID, derr)
	}
	return nil
}

// Login authenticates an email/password pair. With 2FA enabled the result
// is a two-factor-required partial payload and a code is dispatched; the
// session token is only issued by VerifyLogin.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Password == models.PlaceholderPassword {
		// Externally-delegated account: it has no local credential.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if err := s.dispatchCode(ctx, user, s.cfg.LoginOTPTTL, "Your login verification code"); err != nil {
			// The whole point of this branch is delivering the code.
			return nil, fmt.Errorf("failed to send verification code: %w", err)
		}
		return &LoginResult{TwoFactorRequired: true}, nil
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// VerifyLogin completes a two-factor login. The owner key may be whichever
// identity token the client carries: numeric id, auth UID, or email.
func (s *AuthService) VerifyLogin(ctx context.Context, ownerKey, code string) (*LoginResult, error) {
	if !s.codes.Verify(ownerKey, code) {
		return nil, ErrInvalidOrExpiredCode
	}
	user, err := s.resolver.Resolve(ctx, hintsFromKey(ownerKey))
	if err != nil {
		return nil, ErrInvalidOrExpiredCode
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// ResendLoginCode re-issues the login code. It reports success regardless of
// whether the owner exists.
func (s *AuthService) ResendLoginCode(ctx context.Context, ownerKey string) error {
	user, err := s.resolver.Resolve(ctx, hintsFromKey(ownerKey))
	if err != nil {
		return nil
	}
	if err := s.dispatchCode(ctx, user, s.cfg.LoginOTPTTL, "Your login verification code"); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// BeginTwoFactorSetup dispatches a setup code to the user's email.
func (s *AuthService) BeginTwoFactorSetup(ctx context.Context, user *models.User) error {
	if err := s.dispatchCode(ctx, user, s.cfg.LoginOTPTTL, "Confirm two-factor authentication"); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// ConfirmTwoFactorSetup verifies the setup code and flips the two-factor
// flag on in both stores, reporting the per-store outcome.
func (s *AuthService) ConfirmTwoFactorSetup(ctx context.Context, user *models.User, code string) (rolesync.Result, error) {
	if !s.codes.Verify(user.Email, code) {
		return rolesync.Result{}, ErrInvalidOrExpiredCode
	}
	res := s.syncer.SyncTwoFactor(ctx, targetFor(user), true)
	if res.Relational {
		user.TwoFactorEnabled = true
	}
	return res, nil
}

// DisableTwoFactor verifies a current code and flips the flag off in both
// stores.
func (s *AuthService) DisableTwoFactor(ctx context.Context, user *models.User, code string) (rolesync.Result, error) {
	if err := s.dispatchedOrVerify(ctx, user, code); err != nil {
		return rolesync.Result{}, err
	}
	res := s.syncer.SyncTwoFactor(ctx, targetFor(user), false)
	if res.Relational {
		user.TwoFactorEnabled = false
	}
	return res, nil
}

// dispatchedOrVerify verifies the supplied code, issuing a fresh one first
// when the caller has none pending yet.
func (s *AuthService) dispatchedOrVerify(ctx context.Context, user *models.User, code string) error {
	if code == "" {
		if err := s.dispatchCode(ctx, user, s.cfg.LoginOTPTTL, "Confirm disabling two-factor authentication"); err != nil {
			return fmt.Errorf("failed to send verification code: %w", err)
		}
		return ErrInvalidOrExpiredCode
	}
	if !s.codes.Verify(user.Email, code) {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

// RequestPasswordReset dispatches a reset code. It reports success whether
// or not the email is known, covering accounts known only to the external
// identity provider.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.resolver.Resolve(ctx, identity.Hints{Email: email})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			exists, perr := s.provider.EmailExists(ctx, email)
			if perr != nil || !exists {
				return nil
			}
			// Provider-only account: file the code under the email alone.
			user = &models.User{Email: email}
		} else {
			return nil
		}
	}
	if err := s.dispatchCode(ctx, user, s.cfg.ResetOTPTTL, "Your password reset code"); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// VerifyPasswordReset checks the reset code and mints a one-shot reset
// token with its own expiry window.
func (s *AuthService) VerifyPasswordReset(ctx context.Context, email, code string) (string, error) {
	if !s.codes.Verify(email, code) {
		return "", ErrInvalidOrExpiredCode
	}
	token := uuid.New().String()
	s.mu.Lock()
	s.resetGrants[token] = resetGrant{email: email, expiresAt: s.now().Add(s.cfg.ResetTokenTTL)}
	s.mu.Unlock()
	return token, nil
}

// CompletePasswordReset consumes a reset token and propagates the new
// credential to both stores, returning the per-store outcome.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) (rolesync.Result, error) {
	s.mu.Lock()
	grant, ok := s.resetGrants[token]
	if ok {
		delete(s.resetGrants, token)
	}
	s.mu.Unlock()
	if !ok || s.now().After(grant.expiresAt) {
		return rolesync.Result{}, ErrInvalidOrExpiredCode
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return rolesync.Result{}, fmt.Errorf("failed to hash password: %w", err)
	}
	target := rolesync.Target{Email: grant.email}
	if user, uerr := s.users.GetByEmail(ctx, grant.email); uerr == nil {
		target = targetFor(user)
	}
	return s.syncer.SyncPassword(ctx, target, string(hashed)), nil
}

// dispatchCode issues a code under every known key of the user and delivers
// it through the notification channel.
func (s *AuthService) dispatchCode(ctx context.Context, user *models.User, ttl time.Duration, subject string) error {
	issued, err := s.codes.Issue(otp.Keys{ID: user.ID, AuthUID: user.AuthUID, Email: user.Email}, ttl)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		issued.Code, int(ttl.Minutes()))
	return s.notifier.Send(ctx, user.Email, subject, body)
}

// IssueToken signs a session token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     s.now().Add(s.cfg.TokenTTL).Unix(),
		"iat":     s.now().Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// targetFor builds a synchronizer target from a resolved user.
func targetFor(user *models.User) rolesync.Target {
	return rolesync.Target{ID: user.ID, AuthUID: user.AuthUID, Email: user.Email}
}

// hintsFromKey maps one owner key onto the hint slot it looks like; the
// resolver's cascade sorts out what it actually was.
func hintsFromKey(key string) identity.Hints {
	if strings.Contains(key, "@") {
		return identity.Hints{Email: key}
	}
	return identity.Hints{NumericID: key}
}
