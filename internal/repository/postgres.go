package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PostgresStore is the Postgres-backed implementation of AuctionStore.
// The optimistic lock is a conditional UPDATE on current_bid with a
// rows-affected check, so the compare-and-swap happens inside a single
// statement on the database side.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	a := &model.Auction{}
	query := `SELECT * FROM auctions WHERE id=$1`
	err := s.db.GetContext(ctx, a, query, auctionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

func (s *PostgresStore) ListAuctionsByStatus(ctx context.Context, status string) ([]model.Auction, error) {
	auctions := []model.Auction{}
	query := `SELECT * FROM auctions WHERE status=$1 ORDER BY end_time ASC`
	if err := s.db.SelectContext(ctx, &auctions, query, status); err != nil {
		return nil, fmt.Errorf("list auctions with status %s: %w", status, err)
	}
	return auctions, nil
}

func (s *PostgresStore) UpdateAuctionStatus(ctx context.Context, auctionID, status string) error {
	query := `UPDATE auctions SET status=$1 WHERE id=$2`
	res, err := s.db.ExecContext(ctx, query, status, auctionID)
	if err != nil {
		return fmt.Errorf("update auction %s status: %w", auctionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update auction %s status: %w", auctionID, err)
	}
	if n == 0 {
		return fmt.Errorf("update auction %s status: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

func (s *PostgresStore) UpdateCurrentBid(ctx context.Context, auctionID string, newBid, expected decimal.Decimal) error {
	query := `UPDATE auctions SET current_bid=$1 WHERE id=$2 AND current_bid=$3`
	res, err := s.db.ExecContext(ctx, query, newBid, auctionID, expected)
	if err != nil {
		return fmt.Errorf("update current bid for auction %s: %w", auctionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update current bid for auction %s: %w", auctionID, err)
	}
	if n == 0 {
		// Either the auction vanished or someone else's bid landed
		// between our snapshot and this write. The orchestrator read
		// the auction at the start of the request, so treat it as a
		// lost race.
		return fmt.Errorf("update current bid for auction %s: %w", auctionID, auctionerrors.ErrConcurrencyConflict)
	}
	return nil
}

func (s *PostgresStore) GetLeadingBid(ctx context.Context, auctionID string) (*model.Bid, error) {
	b := &model.Bid{}
	query := `
        SELECT * FROM bids
        WHERE auction_id=$1 AND status=$2
        ORDER BY bid_amount DESC
        LIMIT 1`
	err := s.db.GetContext(ctx, b, query, auctionID, model.BidStatusAccepted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get leading bid for auction %s: %w", auctionID, auctionerrors.ErrNoLeadingBid)
	}
	if err != nil {
		return nil, fmt.Errorf("get leading bid for auction %s: %w", auctionID, err)
	}
	return b, nil
}

func (s *PostgresStore) InsertBid(ctx context.Context, bid *model.Bid) error {
	query := `
        INSERT INTO bids
            (id, auction_id, bidder_name, bidder_email, bidder_phone,
             bid_amount, submitted_bid_amount, maximum_bid_amount, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING bid_time`
	err := s.db.QueryRowContext(ctx, query,
		bid.BidID, bid.AuctionID, bid.BidderName, bid.BidderEmail, bid.BidderPhone,
		bid.BidAmount, bid.SubmittedBidAmount, bid.MaximumBidAmount, bid.Status).
		Scan(&bid.BidTime)
	if err != nil {
		return fmt.Errorf("insert bid for auction %s: %w", bid.AuctionID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateBidOutcome(ctx context.Context, bidID string, amount decimal.Decimal, status string) error {
	query := `UPDATE bids SET bid_amount=$1, status=$2 WHERE id=$3`
	res, err := s.db.ExecContext(ctx, query, amount, status, bidID)
	if err != nil {
		return fmt.Errorf("update bid %s: %w", bidID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bid %s: %w", bidID, err)
	}
	if n == 0 {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteBid(ctx context.Context, bidID string) error {
	query := `DELETE FROM bids WHERE id=$1`
	if _, err := s.db.ExecContext(ctx, query, bidID); err != nil {
		return fmt.Errorf("delete bid %s: %w", bidID, err)
	}
	return nil
}
