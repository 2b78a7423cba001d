package bidding

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/proxy"
	"auction-service/internal/repository"
	"auction-service/utils"

	"github.com/shopspring/decimal"
)

// Outcome values returned to the caller of PlaceBid.
const (
	OutcomeLeading = "leading"
	OutcomeOutbid  = "outbid"
)

// BidService orchestrates bid submission: validation, the proxy
// resolution engine, the optimistically-locked persistence of the
// outcome, and best-effort notifications.
type BidService struct {
	store  repository.AuctionStore
	sender notifier.NotificationSender

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// NewBidService creates a new BidService instance
func NewBidService(store repository.AuctionStore, sender notifier.NotificationSender) *BidService {
	return &BidService{
		store:  store,
		sender: sender,
		now:    time.Now,
	}
}

// PlaceBidInput is a validated-at-the-edge bid submission. MaximumBid
// is the optional proxy ceiling; nil defaults it to BidAmount.
type PlaceBidInput struct {
	AuctionID   string
	BidderName  string
	BidderEmail string
	BidderPhone string
	BidAmount   decimal.Decimal
	MaximumBid  *decimal.Decimal
}

// PlaceBidResult is the observable outcome of a submission. Bid is the
// caller's own row, so exposing its ceiling is fine; no other bidder's
// ceiling ever leaves this package.
type PlaceBidResult struct {
	Outcome    string
	Bid        model.Bid
	CurrentBid decimal.Decimal
}

// CloseAuctionResult reports the outcome of ending an auction. Winner
// is nil when the auction closed without a single bid.
type CloseAuctionResult struct {
	Auction model.Auction
	Winner  *model.Bid
}

// PlaceBid runs one bid submission end to end.
//
// The decision is computed against a snapshot of {auction, leading
// bid} read at the start of the request. Persisting the outcome is
// guarded by a compare-and-swap on the auction's current_bid: losing
// the race rolls back the just-inserted bid row and surfaces
// ErrConcurrencyConflict so the caller can retry against fresh state.
func (s *BidService) PlaceBid(ctx context.Context, in PlaceBidInput) (PlaceBidResult, error) {
	if err := validateInput(in); err != nil {
		return PlaceBidResult{}, err
	}

	auction, err := s.store.GetAuction(ctx, in.AuctionID)
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("service: %w", err)
	}
	if auction.Status != model.AuctionStatusLive {
		return PlaceBidResult{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionNotLive)
	}
	if !s.now().Before(auction.EndTime) {
		return PlaceBidResult{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
	}

	leading, err := s.store.GetLeadingBid(ctx, in.AuctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoLeadingBid) {
		return PlaceBidResult{}, fmt.Errorf("service: failed to load leading bid: %w", err)
	}
	if leading != nil && !leading.BidAmount.Equal(auction.CurrentBid) {
		// The accepted bid's visible amount always equals the auction's
		// current bid, so a mismatch means the two reads straddled
		// another request's commit. Retry against fresh state.
		return PlaceBidResult{}, fmt.Errorf("service: %w", auctionerrors.ErrConcurrencyConflict)
	}

	ceiling := in.BidAmount
	if in.MaximumBid != nil {
		ceiling = *in.MaximumBid
	}

	var prev *proxy.Leader
	if leading != nil {
		prev = &proxy.Leader{Amount: leading.BidAmount, Ceiling: leading.MaximumBidAmount}
	}

	res, err := proxy.Resolve(auction.CurrentBid, in.BidAmount, ceiling, prev)
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("service: %w", err)
	}

	bid := model.Bid{
		BidID:              utils.GenerateID(),
		AuctionID:          in.AuctionID,
		BidderName:         in.BidderName,
		BidderEmail:        in.BidderEmail,
		BidderPhone:        in.BidderPhone,
		BidAmount:          res.IncomingVisible,
		SubmittedBidAmount: in.BidAmount,
		MaximumBidAmount:   ceiling,
		Status:             model.BidStatusOutbid,
		BidTime:            s.now().UTC(),
	}
	if res.IncomingLeads {
		bid.Status = model.BidStatusAccepted
	}

	if err := s.store.InsertBid(ctx, &bid); err != nil {
		return PlaceBidResult{}, fmt.Errorf("service: failed to record bid for auction %s: %w", in.AuctionID, err)
	}

	if err := s.store.UpdateCurrentBid(ctx, in.AuctionID, res.CurrentBid, auction.CurrentBid); err != nil {
		// Lost the optimistic-lock race (or the auction vanished):
		// the inserted row must not be left orphaned.
		if delErr := s.store.DeleteBid(ctx, bid.BidID); delErr != nil {
			utils.Error("failed to roll back bid after conflict", map[string]any{
				"bid_id":     bid.BidID,
				"auction_id": in.AuctionID,
				"error":      delErr.Error(),
			})
		}
		return PlaceBidResult{}, fmt.Errorf("service: %w", err)
	}

	if leading != nil {
		if res.IncomingLeads {
			// Displaced leader keeps its last visible amount.
			err = s.store.UpdateBidOutcome(ctx, leading.BidID, leading.BidAmount, model.BidStatusOutbid)
		} else if res.PreviousLeaderAmount != nil {
			// Retained leader auto-raises to stay ahead.
			err = s.store.UpdateBidOutcome(ctx, leading.BidID, *res.PreviousLeaderAmount, model.BidStatusAccepted)
		}
		if err != nil {
			// The auction row already committed; without the leader
			// adjustment the ledger would hold two accepted bids, so
			// revert both writes before surfacing the error.
			if casErr := s.store.UpdateCurrentBid(ctx, in.AuctionID, auction.CurrentBid, res.CurrentBid); casErr != nil {
				utils.Error("failed to restore current bid after leader adjustment failure", map[string]any{
					"auction_id": in.AuctionID,
					"error":      casErr.Error(),
				})
			}
			if delErr := s.store.DeleteBid(ctx, bid.BidID); delErr != nil {
				utils.Error("failed to roll back bid after leader adjustment failure", map[string]any{
					"bid_id":     bid.BidID,
					"auction_id": in.AuctionID,
					"error":      delErr.Error(),
				})
			}
			return PlaceBidResult{}, fmt.Errorf("service: failed to adjust previous leader %s: %w", leading.BidID, err)
		}
	}

	auction.CurrentBid = res.CurrentBid
	go s.notifyBidPlaced(*auction, bid, leading, res)

	outcome := OutcomeOutbid
	if res.IncomingLeads {
		outcome = OutcomeLeading
	}
	return PlaceBidResult{Outcome: outcome, Bid: bid, CurrentBid: res.CurrentBid}, nil
}

// GetAuction returns a single auction.
func (s *BidService) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}
	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return auction, nil
}

// ListLiveAuctions returns all auctions currently accepting bids.
func (s *BidService) ListLiveAuctions(ctx context.Context) ([]model.Auction, error) {
	auctions, err := s.store.ListAuctionsByStatus(ctx, model.AuctionStatusLive)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list live auctions: %w", err)
	}
	return auctions, nil
}

// CloseAuction ends a live auction and determines the winner from the
// accepted bid, dispatching winner notifications best-effort.
func (s *BidService) CloseAuction(ctx context.Context, auctionID string) (CloseAuctionResult, error) {
	if auctionID == "" {
		return CloseAuctionResult{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrValidation)
	}

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return CloseAuctionResult{}, fmt.Errorf("service: %w", err)
	}
	if auction.Status != model.AuctionStatusLive {
		return CloseAuctionResult{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionNotLive)
	}

	if err := s.store.UpdateAuctionStatus(ctx, auctionID, model.AuctionStatusEnded); err != nil {
		return CloseAuctionResult{}, fmt.Errorf("service: failed to end auction %s: %w", auctionID, err)
	}
	auction.Status = model.AuctionStatusEnded

	winner, err := s.store.GetLeadingBid(ctx, auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoLeadingBid) {
			return CloseAuctionResult{Auction: *auction}, nil
		}
		return CloseAuctionResult{}, fmt.Errorf("service: failed to load winning bid: %w", err)
	}

	go s.notifyWinner(*auction, *winner)

	return CloseAuctionResult{Auction: *auction, Winner: winner}, nil
}

// notifyBidPlaced dispatches the post-commit side effects of a bid.
// Runs detached from the request; failures are logged, never surfaced.
func (s *BidService) notifyBidPlaced(auction model.Auction, bid model.Bid, displaced *model.Bid, res proxy.Resolution) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sender.SendBidConfirmation(ctx, auction, bid); err != nil {
		utils.Warn("failed to send bid confirmation", map[string]any{
			"bid_id": bid.BidID, "error": err.Error(),
		})
	}

	if displaced != nil && res.IncomingLeads {
		if err := s.sender.SendOutbidAlert(ctx, auction, *displaced, res.CurrentBid); err != nil {
			utils.Warn("failed to send outbid alert", map[string]any{
				"bid_id": displaced.BidID, "error": err.Error(),
			})
		}
	}

	if err := s.sender.SendAdminAlert(ctx, auction, bid); err != nil {
		utils.Warn("failed to send admin alert", map[string]any{
			"bid_id": bid.BidID, "error": err.Error(),
		})
	}
}

func (s *BidService) notifyWinner(auction model.Auction, winner model.Bid) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sender.SendWinnerNotification(ctx, auction, winner); err != nil {
		utils.Warn("failed to send winner notification", map[string]any{
			"auction_id": auction.ID, "bid_id": winner.BidID, "error": err.Error(),
		})
	}
}

// validateInput checks field-level constraints before any state is read.
func validateInput(in PlaceBidInput) error {
	if in.AuctionID == "" {
		return fmt.Errorf("service: %w - missing auction ID", auctionerrors.ErrValidation)
	}
	if in.BidderName == "" || len(in.BidderName) > 100 {
		return fmt.Errorf("service: %w - bidder name must be 1-100 characters", auctionerrors.ErrValidation)
	}
	if len(in.BidderEmail) > 255 {
		return fmt.Errorf("service: %w - bidder email too long", auctionerrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.BidderEmail); err != nil {
		return fmt.Errorf("service: %w - invalid bidder email", auctionerrors.ErrValidation)
	}
	if len(in.BidderPhone) > 20 {
		return fmt.Errorf("service: %w - bidder phone too long", auctionerrors.ErrValidation)
	}
	if !in.BidAmount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrValidation)
	}
	if !model.ValidMoney(in.BidAmount) {
		return fmt.Errorf("service: %w - bid amount must have at most 2 decimal places and not exceed %s", auctionerrors.ErrValidation, model.MaxBidAmount)
	}
	if in.MaximumBid != nil {
		if !in.MaximumBid.IsPositive() || !model.ValidMoney(*in.MaximumBid) {
			return fmt.Errorf("service: %w - invalid maximum bid", auctionerrors.ErrValidation)
		}
		if in.MaximumBid.LessThan(in.BidAmount) {
			return fmt.Errorf("service: %w", auctionerrors.ErrInvalidCeiling)
		}
	}
	return nil
}
