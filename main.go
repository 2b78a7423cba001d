package main

import (
	"fmt"
	"os"
	"time"

	"auction-service/db/migrations"
	bidding "auction-service/internal/biddingService"
	"auction-service/internal/config"
	model "auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/ratelimit"
	"auction-service/internal/repository"
	"auction-service/internal/server"
	"auction-service/utils"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up storage: %v\n", err)
		os.Exit(1)
	}

	sender := notifier.NewEmailSMSNotifier(notifier.Config{
		ResendAPIKey:      cfg.ResendAPIKey,
		EmailFrom:         cfg.EmailFrom,
		AdminEmail:        cfg.AdminEmail,
		TwilioAccountSID:  cfg.TwilioAccountSID,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		TwilioPhoneNumber: cfg.TwilioPhoneNumber,
	})

	biddingSvc := bidding.NewBidService(store, sender)
	limiter := ratelimit.NewFixedWindowLimiter(cfg.BidRateLimit, cfg.BidRateWindow)

	router := server.SetupRouter(biddingSvc, limiter)

	fmt.Printf("Starting auction server on %s...\n", cfg.ServerAddress)
	if err := router.Run(cfg.ServerAddress); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore connects to Postgres when configured, and otherwise falls
// back to the in-memory store seeded with a demo auction.
func buildStore(cfg config.Config) (repository.AuctionStore, error) {
	if cfg.PostgresConn == "" {
		utils.Warn("POSTGRES_CONN not set, using in-memory store", nil)
		store := repository.NewMemoryStore()
		seedDemoAuction(store)
		return store, nil
	}

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.Run(dbConn.DB); err != nil {
		return nil, err
	}
	return repository.NewPostgresStore(dbConn), nil
}

// seedDemoAuction adds a sample live auction to the in-memory store
func seedDemoAuction(store *repository.MemoryStore) {
	store.AddAuction(model.Auction{
		ID:         utils.GenerateID(),
		Title:      "Untitled No. 1",
		Artist:     "MEZ",
		Status:     model.AuctionStatusLive,
		CurrentBid: decimal.NewFromInt(100),
		EndTime:    time.Now().Add(72 * time.Hour),
		CreatedAt:  time.Now(),
	})
}
