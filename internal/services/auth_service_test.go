package services_test

import (
	"context"
	"log"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/otp"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/rolesync"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

var codePattern = regexp.MustCompile(`\d{6}`)

// captureNotifier records outbound notifications so tests can read the
// delivered codes.
type captureNotifier struct {
	mu       sync.Mutex
	lastTo   string
	lastBody string
	sent     int
}

func (n *captureNotifier) Send(ctx context.Context, recipientEmail, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastTo = recipientEmail
	n.lastBody = body
	n.sent++
	return nil
}

func (n *captureNotifier) lastCode() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return codePattern.FindString(n.lastBody)
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent
}

type authFixture struct {
	users    *repositories.MockUserRepository
	docs     *repositories.MemoryDocumentStore
	notifier *captureNotifier
	auth     *services.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := repositories.NewMockUserRepository()
	docs := repositories.NewMemoryDocumentStore()
	notifier := &captureNotifier{}
	resolver := identity.NewResolver(users, docs, nil)
	syncer := rolesync.NewSynchronizer(users, docs, 0)
	auth := services.NewAuthService(users, docs, resolver, syncer, otp.NewAuthenticator(0),
		notifier, nil, services.AuthConfig{JWTSecret: "test_jwt_secret"})
	return &authFixture{users: users, docs: docs, notifier: notifier, auth: auth}
}

func (f *authFixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	user := &models.User{Username: "shopper", Email: email}
	err := f.auth.Register(context.Background(), user, password)
	assert.NoError(t, err)
	return user
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	os.Exit(m.Run())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "shopper@example.com", "password123")
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.Password)

	// Profile mirrored document-side, without the credential.
	data, err := f.docs.Get(context.Background(), repositories.ColUsers, user.DocumentKey())
	assert.NoError(t, err)
	assert.Equal(t, "shopper@example.com", data["email"])
	assert.NotContains(t, data, "password")

	// Duplicate registration.
	err = f.auth.Register(context.Background(), &models.User{Username: "other", Email: "shopper@example.com"}, "x12345")
	assert.ErrorIs(t, err, services.ErrEmailInUse)

	// Successful login issues a token whose claims name the user.
	result, err := f.auth.Login(context.Background(), "shopper@example.com", "password123")
	assert.NoError(t, err)
	assert.False(t, result.TwoFactorRequired)
	assert.NotEmpty(t, result.Token)

	claims, err := f.auth.ValidateToken(result.Token)
	assert.NoError(t, err)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, "shopper@example.com", claims["email"])

	// Wrong password and unknown email look identical.
	_, err = f.auth.Login(context.Background(), "shopper@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.auth.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ExternalAccountHasNoLocalCredential(t *testing.T) {
	f := newAuthFixture(t)
	user := &models.User{
		Username: "delegated",
		Email:    "delegated@example.com",
		Password: models.PlaceholderPassword,
		Role:     models.RoleUser,
	}
	assert.NoError(t, f.users.Create(context.Background(), user))

	// The placeholder is not a usable password, even if supplied verbatim.
	_, err := f.auth.Login(context.Background(), "delegated@example.com", models.PlaceholderPassword)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_TwoFactorSetupAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "shopper@example.com", "password123")

	// Enabling 2FA requires proving code delivery works first.
	assert.NoError(t, f.auth.BeginTwoFactorSetup(context.Background(), user))
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, "shopper@example.com", f.notifier.lastTo)

	_, err := f.auth.ConfirmTwoFactorSetup(context.Background(), user, "000000")
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)

	assert.NoError(t, f.auth.BeginTwoFactorSetup(context.Background(), user))
	res, err := f.auth.ConfirmTwoFactorSetup(context.Background(), user, f.notifier.lastCode())
	assert.NoError(t, err)
	assert.True(t, res.Overall)
	assert.True(t, user.TwoFactorEnabled)

	// The flag is mirrored in both stores.
	stored, err := f.users.GetByID(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)
	data, err := f.docs.Get(context.Background(), repositories.ColUsers, user.DocumentKey())
	assert.NoError(t, err)
	assert.Equal(t, true, data["twoFactorEnabled"])

	// Login now stops at the code gate.
	result, err := f.auth.Login(context.Background(), "shopper@example.com", "password123")
	assert.NoError(t, err)
	assert.True(t, result.TwoFactorRequired)
	assert.Empty(t, result.Token)

	code := f.notifier.lastCode()
	verified, err := f.auth.VerifyLogin(context.Background(), "shopper@example.com", code)
	assert.NoError(t, err)
	assert.NotEmpty(t, verified.Token)
	assert.Equal(t, user.ID, verified.User.ID)

	// Codes are single-use.
	_, err = f.auth.VerifyLogin(context.Background(), "shopper@example.com", code)
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)
}

func TestAuthService_VerifyLoginAcceptsAnyOwnerKey(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "shopper@example.com", "password123")
	_, err := f.auth.ConfirmTwoFactorSetup(context.Background(), user, "junk")
	assert.Error(t, err)

	assert.NoError(t, f.auth.BeginTwoFactorSetup(context.Background(), user))
	_, err = f.auth.ConfirmTwoFactorSetup(context.Background(), user, f.notifier.lastCode())
	assert.NoError(t, err)

	_, err = f.auth.Login(context.Background(), "shopper@example.com", "password123")
	assert.NoError(t, err)

	// The code was filed under the numeric id as well as the email.
	verified, err := f.auth.VerifyLogin(context.Background(), models.FormatID(user.ID), f.notifier.lastCode())
	assert.NoError(t, err)
	assert.Equal(t, user.ID, verified.User.ID)
}

func TestAuthService_DisableTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t, "shopper@example.com", "password123")
	assert.NoError(t, f.auth.BeginTwoFactorSetup(context.Background(), user))
	_, err := f.auth.ConfirmTwoFactorSetup(context.Background(), user, f.notifier.lastCode())
	assert.NoError(t, err)

	// First call with no code dispatches one and asks again.
	_, err = f.auth.DisableTwoFactor(context.Background(), user, "")
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)

	res, err := f.auth.DisableTwoFactor(context.Background(), user, f.notifier.lastCode())
	assert.NoError(t, err)
	assert.True(t, res.Overall)
	assert.False(t, user.TwoFactorEnabled)
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "shopper@example.com", "oldpassword")

	assert.NoError(t, f.auth.RequestPasswordReset(context.Background(), "shopper@example.com"))
	code := f.notifier.lastCode()
	assert.Len(t, code, 6)

	_, err := f.auth.VerifyPasswordReset(context.Background(), "shopper@example.com", "999999")
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)

	token, err := f.auth.VerifyPasswordReset(context.Background(), "shopper@example.com", code)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The code is spent; only the token authorizes the change now.
	_, err = f.auth.VerifyPasswordReset(context.Background(), "shopper@example.com", code)
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)

	res, err := f.auth.CompletePasswordReset(context.Background(), token, "newpassword")
	assert.NoError(t, err)
	assert.True(t, res.Overall)
	assert.True(t, res.Relational)

	// Tokens are one-shot.
	_, err = f.auth.CompletePasswordReset(context.Background(), token, "again")
	assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)

	_, err = f.auth.Login(context.Background(), "shopper@example.com", "oldpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	result, err := f.auth.Login(context.Background(), "shopper@example.com", "newpassword")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestAuthService_PasswordResetUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)

	assert.NoError(t, f.auth.RequestPasswordReset(context.Background(), "stranger@example.com"))
	assert.Equal(t, 0, f.notifier.count())
}

func TestAuthService_ResendLoginCodeIsEnumerationSafe(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "shopper@example.com", "password123")

	assert.NoError(t, f.auth.ResendLoginCode(context.Background(), "shopper@example.com"))
	assert.Equal(t, 1, f.notifier.count())

	assert.NoError(t, f.auth.ResendLoginCode(context.Background(), "stranger@example.com"))
	assert.Equal(t, 1, f.notifier.count())
}
