package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
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
	"github.com/arhammunir1104/ecom-sub001/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("SQLITE_PATH", "store.db")
	viper.SetDefault("FIRESTORE_PROJECT", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("OTP_LOGIN_TTL", "10m")
	viper.SetDefault("OTP_RESET_TTL", "10m")
	viper.SetDefault("RESET_TOKEN_TTL", "30m")
	viper.SetDefault("STORE_TIMEOUT", "3s")
	viper.AutomaticEnv()

	// --- Relational store ---
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Category{},
		&models.Order{}, &models.OrderItem{}, &models.Review{},
		&models.HeroBanner{}, &models.Testimonial{},
		&models.WishlistItem{}, &models.CartItem{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Document store ---
	docs, docsCloser := openDocumentStore()
	if docsCloser != nil {
		defer docsCloser()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; role convergence and order events are disabled")
	}

	// --- Core components ---
	var convergence identity.ConvergencePublisher
	var orderEvents services.OrderEventPublisher
	if mqClient != nil {
		convergence = mqClient
		orderEvents = mqClient
	}
	storeTimeout := viper.GetDuration("STORE_TIMEOUT")
	resolver := identity.NewResolver(userRepo, docs, convergence)
	accessor := dualstore.NewAccessor(catalogRepo, orderRepo, docs, storeTimeout)
	syncer := rolesync.NewSynchronizer(userRepo, docs, storeTimeout)
	codes := otp.NewAuthenticator(otp.DefaultMaxAttempts)
	notifier := notify.LogNotifier{}
	gateway := payment.StaticGateway{}

	// --- Services ---
	authService := services.NewAuthService(userRepo, docs, resolver, syncer, codes, notifier,
		identity.NoopProvider{}, services.AuthConfig{
			JWTSecret:     viper.GetString("JWT_SECRET"),
			TokenTTL:      viper.GetDuration("TOKEN_TTL"),
			LoginOTPTTL:   viper.GetDuration("OTP_LOGIN_TTL"),
			ResetOTPTTL:   viper.GetDuration("OTP_RESET_TTL"),
			ResetTokenTTL: viper.GetDuration("RESET_TOKEN_TTL"),
		})
	catalogService := services.NewCatalogService(accessor)
	orderService := services.NewOrderService(orderRepo, accessor, gateway, orderEvents)
	userService := services.NewUserService(userRepo, docs, syncer)
	wishlistService := services.NewWishlistService(orderRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService, resolver)
	userHandler := handlers.NewUserHandler(userService, wishlistService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.ResolveIdentity(authService, resolver))

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireAdmin(resolver)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, requireAuth)
	catalogHandler.RegisterRoutes(apiV1, requireAuth, requireAdmin)
	orderHandler.RegisterRoutes(apiV1, requireAdmin)
	userHandler.RegisterRoutes(apiV1, requireAuth, requireAdmin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Background consumers ---
	if mqClient != nil {
		startConsumers(mqClient, syncer)
	}

	// --- Expired-code sweeper ---
	go func() {
		for range time.Tick(5 * time.Minute) {
			codes.Sweep()
		}
	}()

	// --- Start HTTP server ---
	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens postgres when DATABASE_DSN is set and falls back to a
// local sqlite file otherwise.
func openDatabase() (*gorm.DB, error) {
	if dsn := viper.GetString("DATABASE_DSN"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), &gorm.Config{})
}

// openDocumentStore opens Firestore when FIRESTORE_PROJECT is set and falls
// back to the in-memory store otherwise.
func openDocumentStore() (repositories.DocumentStore, func()) {
	project := viper.GetString("FIRESTORE_PROJECT")
	if project == "" {
		log.Println("FIRESTORE_PROJECT not set; using in-memory document store")
		return repositories.NewMemoryDocumentStore(), nil
	}
	client, err := firestore.NewClient(context.Background(), project)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore client: %v", err)
	}
	return repositories.NewFirestoreDocumentStore(client), func() {
		if err := client.Close(); err != nil {
			log.Printf("Error closing Firestore client: %v", err)
		}
	}
}

// startConsumers wires the role-convergence and order-event consumers.
func startConsumers(mqClient *rabbitmq.Client, syncer *rolesync.Synchronizer) {
	err := mqClient.ConsumeRoleSync(func(msg rabbitmq.RoleSyncMessage) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res := syncer.SyncRole(ctx, rolesync.Target{AuthUID: msg.UID}, models.Role(msg.Role))
		if !res.Relational {
			log.Printf("Role convergence for uid %s incomplete: relational=%v document=%v",
				msg.UID, res.Relational, res.Document)
		}
		// The message is acknowledged even on partial failure; the next
		// authorization check re-queues convergence if still divergent.
		return nil
	})
	if err != nil {
		log.Printf("Failed to start role sync consumer: %v", err)
	}

	err = mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
		log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
		return nil
	})
	if err != nil {
		log.Printf("Failed to start order event consumer: %v", err)
	}
}
