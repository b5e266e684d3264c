package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arhammunir1104/ecom-sub001/internal/dualstore"
	"github.com/arhammunir1104/ecom-sub001/internal/handlers"
	"github.com/arhammunir1104/ecom-sub001/internal/identity"
	"github.com/arhammunir1104/ecom-sub001/internal/middleware"
	"github.com/arhammunir1104/ecom-sub001/internal/models"
	"github.com/arhammunir1104/ecom-sub001/internal/notify"
	"github.com/arhammunir1104/ecom-sub001/internal/otp"
	"github.com/arhammunir1104/ecom-sub001/internal/payment"
	"github.com/arhammunir1104/ecom-sub001/internal/repositories"
	"github.com/arhammunir1104/ecom-sub001/internal/rolesync"
	"github.com/arhammunir1104/ecom-sub001/internal/services"
)

var dbCounter int64

// testEnv bundles the app with the repositories tests seed through.
type testEnv struct {
	app     *fiber.App
	auth    *services.AuthService
	users   repositories.UserRepository
	catalog repositories.CatalogRepository
	docs    *repositories.MemoryDocumentStore
}

// setupApp wires a full application against an in-memory SQLite database and
// the in-memory document store, mirroring the production wiring.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()

	// A uniquely named shared-cache memory database keeps tests isolated
	// while surviving connection pooling.
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Category{},
		&models.Order{}, &models.OrderItem{}, &models.Review{},
		&models.HeroBanner{}, &models.Testimonial{},
		&models.WishlistItem{}, &models.CartItem{},
	)
	assert.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	docs := repositories.NewMemoryDocumentStore()

	resolver := identity.NewResolver(userRepo, docs, nil)
	accessor := dualstore.NewAccessor(catalogRepo, orderRepo, docs, 0)
	syncer := rolesync.NewSynchronizer(userRepo, docs, 0)
	codes := otp.NewAuthenticator(0)

	authService := services.NewAuthService(userRepo, docs, resolver, syncer, codes,
		notify.LogNotifier{}, identity.NoopProvider{}, services.AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
		})
	catalogService := services.NewCatalogService(accessor)
	orderService := services.NewOrderService(orderRepo, accessor, payment.StaticGateway{}, nil)
	userService := services.NewUserService(userRepo, docs, syncer)
	wishlistService := services.NewWishlistService(orderRepo)

	app := fiber.New()
	app.Use(middleware.ResolveIdentity(authService, resolver))

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin(resolver)

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, requireAuth)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1, requireAuth, requireAdmin)
	handlers.NewOrderHandler(orderService, resolver).RegisterRoutes(apiV1, requireAdmin)
	handlers.NewUserHandler(userService, wishlistService).RegisterRoutes(apiV1, requireAuth, requireAdmin)

	return &testEnv{app: app, auth: authService, users: userRepo, catalog: catalogRepo, docs: docs}
}

// seedUser writes a user straight into the relational store.
func (e *testEnv) seedUser(t *testing.T, email, password string, role models.Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := &models.User{
		Username: "seeded",
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	assert.NoError(t, e.users.Create(t.Context(), user))
	return user
}

// login performs the login request and returns the session token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// request performs one JSON request against the app.
func (e *testEnv) request(t *testing.T, method, path string, payload interface{}, token string) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	resp := env.request(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&registerResp))
	assert.Equal(t, "User registered successfully", registerResp["message"])
	resp.Body.Close()

	// Duplicate email conflicts.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "testuser2",
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	token := env.login(t, "test@example.com", "password123")
	claims, err := env.auth.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", claims["email"])

	// The session resolves to a profile.
	resp = env.request(t, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "test@example.com", me.Email)
	resp.Body.Close()

	// Wrong password is a 401 with no detail.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "test@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestGuestBrowsingAndCheckout(t *testing.T) {
	env := setupApp(t)
	product := &models.Product{Name: "Test Mug", Description: "For testing", Price: 12.5, Stock: 10}
	assert.NoError(t, env.catalog.SaveProduct(t.Context(), product))

	// Browsing needs no identity.
	resp := env.request(t, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 1)
	resp.Body.Close()

	// Guest wishlist reads answer empty instead of failing.
	resp = env.request(t, http.MethodGet, "/api/v1/wishlist", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var wishlist []models.WishlistItem
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&wishlist))
	assert.Empty(t, wishlist)
	resp.Body.Close()

	// Guest checkout succeeds and stores no owner.
	resp = env.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": product.ID, "quantity": 2}},
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var checkout struct {
		Order   models.Order   `json:"order"`
		Payment payment.Intent `json:"payment"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&checkout))
	assert.Nil(t, checkout.Order.UserID)
	assert.Equal(t, 25.0, checkout.Order.TotalAmount)
	assert.NotEmpty(t, checkout.Payment.ID)
	resp.Body.Close()

	// The guest's own order list is empty: there is no identity to key it by.
	resp = env.request(t, http.MethodGet, "/api/v1/orders", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	assert.Empty(t, orders)
	resp.Body.Close()
}

func TestProductFilters(t *testing.T) {
	env := setupApp(t)
	seed := []models.Product{
		{Name: "Espresso Machine", Description: "Coffee", Price: 250, Stock: 3},
		{Name: "French Press", Description: "Coffee", Price: 30, DiscountPrice: 24, Stock: 5},
		{Name: "Running Shoes", Description: "Sports", Price: 90, Stock: 2},
	}
	for i := range seed {
		assert.NoError(t, env.catalog.SaveProduct(t.Context(), &seed[i]))
	}

	resp := env.request(t, http.MethodGet, "/api/v1/products?search=coffee", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 2)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/v1/products?sale=true", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 1)
	assert.Equal(t, "French Press", products[0].Name)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/v1/products?min_price=50&max_price=100", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 1)
	assert.Equal(t, "Running Shoes", products[0].Name)
	resp.Body.Close()
}

func TestAdminGatingOnCatalogMutation(t *testing.T) {
	env := setupApp(t)
	env.seedUser(t, "admin@example.com", "adminpass", models.RoleAdmin)
	env.seedUser(t, "user@example.com", "userpass", models.RoleUser)
	adminToken := env.login(t, "admin@example.com", "adminpass")
	userToken := env.login(t, "user@example.com", "userpass")

	productBody := map[string]interface{}{
		"name":  "Admin Only Lamp",
		"price": 49.99,
		"stock": 5,
	}

	// Guests are unauthenticated, plain users are forbidden.
	resp := env.request(t, http.MethodPost, "/api/v1/products", productBody, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/v1/products", productBody, userToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/v1/products", productBody, adminToken)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	resp.Body.Close()

	// The create is mirrored into the document store.
	data, err := env.docs.Get(t.Context(), repositories.ColProducts, models.FormatID(created.ID))
	assert.NoError(t, err)
	assert.Equal(t, "Admin Only Lamp", data["name"])

	// Update and delete round-trip.
	productBody["name"] = "Renamed Lamp"
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID), productBody, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestMalformedProductKeyIsClientError(t *testing.T) {
	env := setupApp(t)

	resp := env.request(t, http.MethodGet, "/api/v1/products/not-a-number", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRoleChangeReportsPerStoreOutcome(t *testing.T) {
	env := setupApp(t)
	env.seedUser(t, "admin@example.com", "adminpass", models.RoleAdmin)
	target := env.seedUser(t, "promote@example.com", "userpass", models.RoleUser)
	adminToken := env.login(t, "admin@example.com", "adminpass")

	resp := env.request(t, http.MethodPost, "/api/v1/users/role", map[string]interface{}{
		"user_id": target.ID,
		"role":    "admin",
	}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result rolesync.Result
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Overall)
	assert.True(t, result.Relational)
	assert.True(t, result.Document)
	resp.Body.Close()

	stored, err := env.users.GetByID(t.Context(), target.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	// Document store down: the change still lands relationally and the
	// partial outcome is reported, not hidden.
	other := env.seedUser(t, "promote2@example.com", "userpass", models.RoleUser)
	env.docs.FailNext = true
	resp = env.request(t, http.MethodPost, "/api/v1/users/role", map[string]interface{}{
		"user_id": other.ID,
		"role":    "admin",
	}, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result = rolesync.Result{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Overall)
	assert.True(t, result.Relational)
	assert.False(t, result.Document)
	assert.NotEmpty(t, result.DocumentError)
	resp.Body.Close()
}

func TestUIDHeaderResolvesActor(t *testing.T) {
	env := setupApp(t)

	// A document-only identity reached through the UID header heals into a
	// canonical record and authenticates.
	assert.NoError(t, env.docs.Set(t.Context(), repositories.ColUsers, "uid-header", map[string]interface{}{
		"email":    "header@example.com",
		"username": "headeruser",
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(middleware.HeaderAuthUID, "uid-header")
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "header@example.com", me.Email)
	resp.Body.Close()

	// An unknown UID is firebase-only: no profile, but browsing still works.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(middleware.HeaderAuthUID, "uid-stranger")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set(middleware.HeaderAuthUID, "uid-stranger")
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
