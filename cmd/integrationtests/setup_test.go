package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-service/internal/biddingService"
	model "auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/ratelimit"
	"auction-service/internal/repository"
	"auction-service/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// permissiveLimiter never throttles; rate-limit behavior gets its own
// test with a real FixedWindowLimiter.
type permissiveLimiter struct{}

func (permissiveLimiter) Allow(string) bool { return true }

// SetupTestRouter initializes the router on the in-memory store, seeded
// with the given auctions. The returned store allows ledger assertions.
func SetupTestRouter(auctions ...model.Auction) (*gin.Engine, *repository.MemoryStore) {
	return setupRouterWithLimiter(permissiveLimiter{}, auctions...)
}

// SetupTestRouterWithLimiter is SetupTestRouter with a caller-supplied
// rate limiter.
func SetupTestRouterWithLimiter(limiter ratelimit.Limiter, auctions ...model.Auction) (*gin.Engine, *repository.MemoryStore) {
	return setupRouterWithLimiter(limiter, auctions...)
}

func setupRouterWithLimiter(limiter ratelimit.Limiter, auctions ...model.Auction) (*gin.Engine, *repository.MemoryStore) {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	for _, a := range auctions {
		store.AddAuction(a)
	}

	service := bidding.NewBidService(store, notifier.NoopSender{})
	router := server.SetupRouter(service, limiter)
	return router, store
}

// LiveAuction builds a live auction seeded at the given current bid.
func LiveAuction(id string, currentBid int64) model.Auction {
	return model.Auction{
		ID:         id,
		Title:      "Untitled No. 1",
		Artist:     "MEZ",
		Status:     model.AuctionStatusLive,
		CurrentBid: decimal.NewFromInt(currentBid),
		EndTime:    time.Now().Add(24 * time.Hour),
		CreatedAt:  time.Now(),
	}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// PlaceBidBody builds a bid submission payload. maximumBid may be nil
// to submit without a proxy ceiling.
func PlaceBidBody(auctionID, name string, amount float64, maximumBid *float64) map[string]any {
	body := map[string]any{
		"auctionId":   auctionID,
		"bidderName":  name,
		"bidderEmail": name + "@example.com",
		"bidAmount":   amount,
	}
	if maximumBid != nil {
		body["maximumBid"] = *maximumBid
	}
	return body
}

func ceiling(v float64) *float64 { return &v }
