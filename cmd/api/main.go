package main

import (
	"log"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/auth"
	"github.com/Johnny2306/plawimadd-group-api/internal/config"
	"github.com/Johnny2306/plawimadd-group-api/internal/database"
	"github.com/Johnny2306/plawimadd-group-api/internal/email"
	"github.com/Johnny2306/plawimadd-group-api/internal/handlers"
	"github.com/Johnny2306/plawimadd-group-api/internal/payment"
	"github.com/Johnny2306/plawimadd-group-api/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	// --- Database Connection ---
	// The pool is acquired here and released at shutdown; handlers receive
	// it by injection instead of reaching for a global.
	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// --- Session Signing Key ---
	auth.SetSecret(cfg.JWTSecret)

	// --- External Services ---
	mailer := email.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	var payments *payment.Client
	if cfg.KkiapayPrivateKey != "" {
		payments = payment.NewClient(cfg.KkiapayAPIURL, cfg.KkiapayPrivateKey)
		log.Println("Kkiapay verification enabled: widget results will be cross-checked")
	} else {
		log.Println("WARNING: No Kkiapay private key configured; widget results are trusted as reported.")
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:       db,
		Cfg:      cfg,
		Mailer:   mailer,
		Payments: payments,
	}

	// --- Background Worker ---
	// Runs every hour to clean up password-reset tokens that expired unused.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: purging expired reset tokens")
		for range ticker.C {
			app.PurgeExpiredResetTokens()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg)

	// --- Start Server ---
	log.Printf("Starting Plawimadd Group API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
