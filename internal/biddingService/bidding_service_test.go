package bidding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-service/internal/auctionerrors"
	model "auction-service/internal/models"
	"auction-service/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// decEq matches decimals by numeric value rather than representation.
type decMatcher struct{ want decimal.Decimal }

func (m decMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decMatcher) String() string {
	return "decimal equal to " + m.want.String()
}

func decEq(s string) gomock.Matcher { return decMatcher{want: dec(s)} }

// captureSender records notification calls so tests can wait for the
// detached dispatch goroutine. fail makes every send return an error.
type captureSender struct {
	mu            sync.Mutex
	fail          bool
	confirmations []model.Bid
	outbidAlerts  []model.Bid
	adminAlerts   []model.Bid
	winnerAlerts  []model.Bid
}

func (c *captureSender) err() error {
	if c.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

func (c *captureSender) SendBidConfirmation(_ context.Context, _ model.Auction, bid model.Bid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmations = append(c.confirmations, bid)
	return c.err()
}

func (c *captureSender) SendOutbidAlert(_ context.Context, _ model.Auction, outbid model.Bid, _ decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbidAlerts = append(c.outbidAlerts, outbid)
	return c.err()
}

func (c *captureSender) SendAdminAlert(_ context.Context, _ model.Auction, bid model.Bid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adminAlerts = append(c.adminAlerts, bid)
	return c.err()
}

func (c *captureSender) SendWinnerNotification(_ context.Context, _ model.Auction, winner model.Bid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.winnerAlerts = append(c.winnerAlerts, winner)
	return c.err()
}

func (c *captureSender) counts() (confirmations, outbid, admin, winner int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.confirmations), len(c.outbidAlerts), len(c.adminAlerts), len(c.winnerAlerts)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func liveAuction(currentBid string) *model.Auction {
	return &model.Auction{
		ID:         "auction1",
		Title:      "Untitled No. 1",
		Artist:     "MEZ",
		Status:     model.AuctionStatusLive,
		CurrentBid: dec(currentBid),
		EndTime:    fixedNow.Add(24 * time.Hour),
	}
}

func leaderBid(id, amount, ceiling string) *model.Bid {
	return &model.Bid{
		BidID:            id,
		AuctionID:        "auction1",
		BidderName:       "Previous Leader",
		BidderEmail:      "leader@example.com",
		BidAmount:        dec(amount),
		MaximumBidAmount: dec(ceiling),
		Status:           model.BidStatusAccepted,
	}
}

func validInput(amount string, ceiling *decimal.Decimal) PlaceBidInput {
	return PlaceBidInput{
		AuctionID:   "auction1",
		BidderName:  "New Bidder",
		BidderEmail: "new@example.com",
		BidAmount:   dec(amount),
		MaximumBid:  ceiling,
	}
}

func newTestService(t *testing.T, store repository.AuctionStore, sender *captureSender) *BidService {
	t.Helper()
	svc := NewBidService(store, sender)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// Tests PlaceBid
func TestBidService_PlaceBid(t *testing.T) {
	tests := []struct {
		name          string
		input         PlaceBidInput
		mockSetup     func(m *repository.MockAuctionStore)
		expectError   bool
		expectedError error
		wantOutcome   string
		wantCurrent   string
		wantBidAmount string
		wantBidStatus string
	}{
		{
			name:  "first_bid_leads_at_submitted",
			input: validInput("101", nil),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("100"), nil)
				m.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrNoLeadingBid)
				m.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("101"), decEq("100")).Return(nil)
			},
			wantOutcome:   OutcomeLeading,
			wantCurrent:   "101",
			wantBidAmount: "101",
			wantBidStatus: model.BidStatusAccepted,
		},
		{
			name:  "higher_ceiling_displaces_leader",
			input: validInput("102", decPtr("150")),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("101"), nil)
				m.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "101", "101"), nil)
				m.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("102"), decEq("101")).Return(nil)
				m.EXPECT().UpdateBidOutcome(gomock.Any(), "prev1", decEq("101"), model.BidStatusOutbid).Return(nil)
			},
			wantOutcome:   OutcomeLeading,
			wantCurrent:   "102",
			wantBidAmount: "102",
			wantBidStatus: model.BidStatusAccepted,
		},
		{
			name:  "lower_ceiling_loses_and_leader_auto_raises",
			input: validInput("103", decPtr("120")),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("102"), nil)
				m.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "102", "150"), nil)
				m.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("121"), decEq("102")).Return(nil)
				m.EXPECT().UpdateBidOutcome(gomock.Any(), "prev1", decEq("121"), model.BidStatusAccepted).Return(nil)
			},
			wantOutcome:   OutcomeOutbid,
			wantCurrent:   "121",
			wantBidAmount: "103",
			wantBidStatus: model.BidStatusOutbid,
		},
		{
			name:  "equal_ceiling_first_mover_retains",
			input: validInput("103", decPtr("150")),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("102"), nil)
				m.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "102", "150"), nil)
				m.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("150"), decEq("102")).Return(nil)
				m.EXPECT().UpdateBidOutcome(gomock.Any(), "prev1", decEq("150"), model.BidStatusAccepted).Return(nil)
			},
			wantOutcome:   OutcomeOutbid,
			wantCurrent:   "150",
			wantBidAmount: "103",
			wantBidStatus: model.BidStatusOutbid,
		},
		{
			name:          "bid_too_low",
			input:         validInput("100.50", nil),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("100"), nil)
				m.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrNoLeadingBid)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:          "ceiling_below_submitted",
			input:         validInput("110", decPtr("105")),
			mockSetup:     func(m *repository.MockAuctionStore) {},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidCeiling,
		},
		{
			name:  "auction_not_live",
			input: validInput("101", nil),
			mockSetup: func(m *repository.MockAuctionStore) {
				a := liveAuction("100")
				a.Status = model.AuctionStatusDraft
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(a, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionNotLive,
		},
		{
			name:  "auction_past_end_time",
			input: validInput("101", nil),
			mockSetup: func(m *repository.MockAuctionStore) {
				a := liveAuction("100")
				a.EndTime = fixedNow.Add(-time.Minute)
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(a, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionEnded,
		},
		{
			name:  "auction_not_found",
			input: validInput("101", nil),
			mockSetup: func(m *repository.MockAuctionStore) {
				m.EXPECT().GetAuction(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrAuctionNotFound)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrAuctionNotFound,
		},
		{
			name: "three_decimal_places_rejected",
			input: PlaceBidInput{
				AuctionID:   "auction1",
				BidderName:  "New Bidder",
				BidderEmail: "new@example.com",
				BidAmount:   dec("100.005"),
			},
			mockSetup:     func(m *repository.MockAuctionStore) {},
			expectError:   true,
			expectedError: auctionerrors.ErrValidation,
		},
		{
			name: "amount_above_upper_bound",
			input: PlaceBidInput{
				AuctionID:   "auction1",
				BidderName:  "New Bidder",
				BidderEmail: "new@example.com",
				BidAmount:   dec("1000000"),
			},
			mockSetup:     func(m *repository.MockAuctionStore) {},
			expectError:   true,
			expectedError: auctionerrors.ErrValidation,
		},
		{
			name: "invalid_email",
			input: PlaceBidInput{
				AuctionID:   "auction1",
				BidderName:  "New Bidder",
				BidderEmail: "not-an-email",
				BidAmount:   dec("101"),
			},
			mockSetup:     func(m *repository.MockAuctionStore) {},
			expectError:   true,
			expectedError: auctionerrors.ErrValidation,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStore := repository.NewMockAuctionStore(ctrl)
			tc.mockSetup(mockStore)

			sender := &captureSender{}
			svc := newTestService(t, mockStore, sender)

			result, err := svc.PlaceBid(context.Background(), tc.input)

			if tc.expectError {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantOutcome, result.Outcome)
			require.True(t, dec(tc.wantCurrent).Equal(result.CurrentBid), "current bid: want %s got %s", tc.wantCurrent, result.CurrentBid)
			require.True(t, dec(tc.wantBidAmount).Equal(result.Bid.BidAmount), "bid amount: want %s got %s", tc.wantBidAmount, result.Bid.BidAmount)
			require.Equal(t, tc.wantBidStatus, result.Bid.Status)

			_, parseErr := uuid.Parse(result.Bid.BidID)
			require.NoError(t, parseErr, "BidID should be a valid UUID")

			// Confirmation to the new bidder always goes out.
			require.Eventually(t, func() bool {
				confirmations, _, _, _ := sender.counts()
				return confirmations == 1
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

// A lost CAS race rolls back the inserted bid row before surfacing
// ErrConcurrencyConflict.
func TestBidService_PlaceBid_ConflictRollsBackBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)

	var insertedID string
	mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("100"), nil)
	mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrNoLeadingBid)
	mockStore.EXPECT().InsertBid(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bid *model.Bid) error {
			insertedID = bid.BidID
			return nil
		})
	mockStore.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("101"), decEq("100")).
		Return(auctionerrors.ErrConcurrencyConflict)
	mockStore.EXPECT().DeleteBid(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bidID string) error {
			require.Equal(t, insertedID, bidID)
			return nil
		})

	sender := &captureSender{}
	svc := newTestService(t, mockStore, sender)

	_, err := svc.PlaceBid(context.Background(), validInput("101", nil))
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrConcurrencyConflict))

	// No notifications after a rolled-back bid.
	time.Sleep(50 * time.Millisecond)
	confirmations, outbid, admin, _ := sender.counts()
	require.Zero(t, confirmations)
	require.Zero(t, outbid)
	require.Zero(t, admin)
}

// A snapshot whose leading-bid amount disagrees with the auction's
// current bid means the two reads straddled another request's commit;
// it must be rejected before any write happens.
func TestBidService_PlaceBid_MidCommitSnapshotRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("102"), nil)
	// The displaced leader's row still shows 101: another request has
	// updated the auction but not yet adjusted the leader.
	mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "101", "101"), nil)

	sender := &captureSender{}
	svc := newTestService(t, mockStore, sender)

	_, err := svc.PlaceBid(context.Background(), validInput("103", decPtr("110")))
	require.Error(t, err)
	require.True(t, errors.Is(err, auctionerrors.ErrConcurrencyConflict))
}

// interleaveStore triggers a callback after the first successful
// compare-and-swap, simulating a request that lands between another
// bid's auction update and its leader-row adjustment.
type interleaveStore struct {
	*repository.MemoryStore
	between func()
	fired   bool
}

func (s *interleaveStore) UpdateCurrentBid(ctx context.Context, auctionID string, newBid, expected decimal.Decimal) error {
	err := s.MemoryStore.UpdateCurrentBid(ctx, auctionID, newBid, expected)
	if err == nil && !s.fired && s.between != nil {
		s.fired = true
		s.between()
	}
	return err
}

func bidderInput(name, amount string, maximum *decimal.Decimal) PlaceBidInput {
	return PlaceBidInput{
		AuctionID:   "auction1",
		BidderName:  name,
		BidderEmail: name + "@example.com",
		BidAmount:   dec(amount),
		MaximumBid:  maximum,
	}
}

// Replays the interleaving end to end: carol's request reads its
// snapshot after bob's auction update but before alice's row is marked
// outbid. Carol must get a conflict, and the ledger must end with
// exactly one accepted bid.
func TestBidService_PlaceBid_InterleavedRequestsKeepSingleAcceptedBid(t *testing.T) {
	store := &interleaveStore{MemoryStore: repository.NewMemoryStore()}
	store.AddAuction(*liveAuction("100"))

	sender := &captureSender{}
	svc := NewBidService(store, sender)
	svc.now = func() time.Time { return fixedNow }

	ctx := context.Background()

	// alice opens at 101.
	_, err := svc.PlaceBid(ctx, bidderInput("alice", "101", nil))
	require.NoError(t, err)

	var carolErr error
	store.between = func() {
		_, carolErr = svc.PlaceBid(ctx, bidderInput("carol", "103", decPtr("110")))
	}

	// bob displaces alice; carol's request runs mid-commit.
	result, err := svc.PlaceBid(ctx, bidderInput("bob", "102", decPtr("150")))
	require.NoError(t, err)
	require.Equal(t, OutcomeLeading, result.Outcome)

	require.Error(t, carolErr)
	require.True(t, errors.Is(carolErr, auctionerrors.ErrConcurrencyConflict))

	accepted := 0
	for _, b := range store.BidsForAuction("auction1") {
		if b.Status == model.BidStatusAccepted {
			accepted++
		}
	}
	require.Equal(t, 1, accepted)
}

// A failed leader-row adjustment after the auction update must not
// persist two accepted bids: both committed writes are reverted before
// the error surfaces.
func TestBidService_PlaceBid_LeaderAdjustmentFailureRevertsCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)

	var insertedID string
	mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("101"), nil)
	mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "101", "101"), nil)
	mockStore.EXPECT().InsertBid(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bid *model.Bid) error {
			insertedID = bid.BidID
			return nil
		})
	mockStore.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("102"), decEq("101")).Return(nil)
	mockStore.EXPECT().UpdateBidOutcome(gomock.Any(), "prev1", decEq("101"), model.BidStatusOutbid).
		Return(errors.New("connection reset"))
	// Reverts: current_bid back to the snapshot value, inserted row gone.
	mockStore.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("101"), decEq("102")).Return(nil)
	mockStore.EXPECT().DeleteBid(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bidID string) error {
			require.Equal(t, insertedID, bidID)
			return nil
		})

	sender := &captureSender{}
	svc := newTestService(t, mockStore, sender)

	_, err := svc.PlaceBid(context.Background(), validInput("102", decPtr("150")))
	require.Error(t, err)

	// No notifications after a reverted commit.
	time.Sleep(50 * time.Millisecond)
	confirmations, outbid, admin, _ := sender.counts()
	require.Zero(t, confirmations)
	require.Zero(t, outbid)
	require.Zero(t, admin)
}

// Notification failures never affect the committed result.
func TestBidService_PlaceBid_NotificationFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("100"), nil)
	mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrNoLeadingBid)
	mockStore.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("101"), decEq("100")).Return(nil)

	sender := &captureSender{fail: true}
	svc := newTestService(t, mockStore, sender)

	result, err := svc.PlaceBid(context.Background(), validInput("101", nil))
	require.NoError(t, err)
	require.Equal(t, OutcomeLeading, result.Outcome)

	require.Eventually(t, func() bool {
		confirmations, _, _, _ := sender.counts()
		return confirmations == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// Displacing a leader triggers an outbid alert to that leader.
func TestBidService_PlaceBid_OutbidAlertGoesToDisplacedLeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockAuctionStore(ctrl)
	mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("101"), nil)
	mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("prev1", "101", "101"), nil)
	mockStore.EXPECT().InsertBid(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().UpdateCurrentBid(gomock.Any(), "auction1", decEq("102"), decEq("101")).Return(nil)
	mockStore.EXPECT().UpdateBidOutcome(gomock.Any(), "prev1", decEq("101"), model.BidStatusOutbid).Return(nil)

	sender := &captureSender{}
	svc := newTestService(t, mockStore, sender)

	_, err := svc.PlaceBid(context.Background(), validInput("102", decPtr("150")))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		confirmations, outbid, admin, _ := sender.counts()
		return confirmations == 1 && outbid == 1 && admin == 1
	}, 2*time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Equal(t, "prev1", sender.outbidAlerts[0].BidID)
}

// Tests CloseAuction
func TestBidService_CloseAuction(t *testing.T) {
	t.Run("winner_determined_and_notified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("121"), nil)
		mockStore.EXPECT().UpdateAuctionStatus(gomock.Any(), "auction1", model.AuctionStatusEnded).Return(nil)
		mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(leaderBid("winner1", "121", "150"), nil)

		sender := &captureSender{}
		svc := newTestService(t, mockStore, sender)

		result, err := svc.CloseAuction(context.Background(), "auction1")
		require.NoError(t, err)
		require.Equal(t, model.AuctionStatusEnded, result.Auction.Status)
		require.NotNil(t, result.Winner)
		require.Equal(t, "winner1", result.Winner.BidID)

		require.Eventually(t, func() bool {
			_, _, _, winner := sender.counts()
			return winner == 1
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("no_bids_no_winner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(liveAuction("0"), nil)
		mockStore.EXPECT().UpdateAuctionStatus(gomock.Any(), "auction1", model.AuctionStatusEnded).Return(nil)
		mockStore.EXPECT().GetLeadingBid(gomock.Any(), "auction1").Return(nil, auctionerrors.ErrNoLeadingBid)

		sender := &captureSender{}
		svc := newTestService(t, mockStore, sender)

		result, err := svc.CloseAuction(context.Background(), "auction1")
		require.NoError(t, err)
		require.Nil(t, result.Winner)
	})

	t.Run("already_ended", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := repository.NewMockAuctionStore(ctrl)
		a := liveAuction("100")
		a.Status = model.AuctionStatusEnded
		mockStore.EXPECT().GetAuction(gomock.Any(), "auction1").Return(a, nil)

		sender := &captureSender{}
		svc := newTestService(t, mockStore, sender)

		_, err := svc.CloseAuction(context.Background(), "auction1")
		require.True(t, errors.Is(err, auctionerrors.ErrAuctionNotLive))
	})
}
