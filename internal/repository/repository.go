package repository

import (
	"context"
	"fmt"
	"sync"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionStore defines the durable storage interface for auctions and
// the bid ledger.
//
// UpdateCurrentBid carries the optimistic-concurrency guard: the write
// applies only if the stored current_bid still equals expected, and
// returns ErrConcurrencyConflict otherwise. Everything the orchestrator
// decides is computed against the snapshot read at the start of a
// request, so this check is what keeps two concurrent bids from both
// being accepted.
type AuctionStore interface {
	GetAuction(ctx context.Context, auctionID string) (*model.Auction, error)
	ListAuctionsByStatus(ctx context.Context, status string) ([]model.Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID, status string) error
	UpdateCurrentBid(ctx context.Context, auctionID string, newBid, expected decimal.Decimal) error

	GetLeadingBid(ctx context.Context, auctionID string) (*model.Bid, error)
	InsertBid(ctx context.Context, bid *model.Bid) error
	UpdateBidOutcome(ctx context.Context, bidID string, amount decimal.Decimal, status string) error
	DeleteBid(ctx context.Context, bidID string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of
// AuctionStore, used by tests and local runs without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	auctions  map[string]*model.Auction
	bids      map[string]*model.Bid
	byAuction map[string][]string // auctionID -> bid IDs in insertion order
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions:  make(map[string]*model.Auction),
		bids:      make(map[string]*model.Bid),
		byAuction: make(map[string][]string),
	}
}

// AddAuction seeds an auction. Intended for tests and local seeding.
func (s *MemoryStore) AddAuction(a model.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	s.auctions[a.ID] = &cp
}

func (s *MemoryStore) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) ListAuctionsByStatus(ctx context.Context, status string) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auctions := make([]model.Auction, 0)
	for _, a := range s.auctions {
		if a.Status == status {
			auctions = append(auctions, *a)
		}
	}
	return auctions, nil
}

func (s *MemoryStore) UpdateAuctionStatus(ctx context.Context, auctionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update auction %s status: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a.Status = status
	return nil
}

// UpdateCurrentBid applies the compare-and-swap on current_bid.
func (s *MemoryStore) UpdateCurrentBid(ctx context.Context, auctionID string, newBid, expected decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return fmt.Errorf("update current bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if !a.CurrentBid.Equal(expected) {
		return fmt.Errorf("update current bid for auction %s: %w", auctionID, auctionerrors.ErrConcurrencyConflict)
	}
	a.CurrentBid = newBid
	return nil
}

// GetLeadingBid returns the accepted bid for an auction, or
// ErrNoLeadingBid when no bid has been placed yet.
func (s *MemoryStore) GetLeadingBid(ctx context.Context, auctionID string) (*model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.byAuction[auctionID] {
		if b := s.bids[id]; b != nil && b.Status == model.BidStatusAccepted {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get leading bid for auction %s: %w", auctionID, auctionerrors.ErrNoLeadingBid)
}

func (s *MemoryStore) InsertBid(ctx context.Context, bid *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("insert bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	cp := *bid
	s.bids[bid.BidID] = &cp
	s.byAuction[bid.AuctionID] = append(s.byAuction[bid.AuctionID], bid.BidID)
	return nil
}

func (s *MemoryStore) UpdateBidOutcome(ctx context.Context, bidID string, amount decimal.Decimal, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bids[bidID]
	if !ok {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	b.BidAmount = amount
	b.Status = status
	return nil
}

// DeleteBid removes a bid row. Only used as the compensating action
// after a lost optimistic-lock race.
func (s *MemoryStore) DeleteBid(ctx context.Context, bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bids[bidID]
	if !ok {
		return fmt.Errorf("delete bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	delete(s.bids, bidID)

	ids := s.byAuction[b.AuctionID]
	for i, id := range ids {
		if id == bidID {
			s.byAuction[b.AuctionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// BidsForAuction returns all bids for an auction in insertion order.
// Intended for tests asserting on ledger state.
func (s *MemoryStore) BidsForAuction(auctionID string) []model.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bids := make([]model.Bid, 0, len(s.byAuction[auctionID]))
	for _, id := range s.byAuction[auctionID] {
		if b := s.bids[id]; b != nil {
			bids = append(bids, *b)
		}
	}
	return bids
}
