package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Monetary values are serialized as plain JSON numbers, matching the
// public API contract.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Auction statuses. Only live auctions accept bids.
const (
	AuctionStatusDraft = "draft"
	AuctionStatusLive  = "live"
	AuctionStatusEnded = "ended"
)

// Bid statuses. At most one bid per auction is accepted at a time.
const (
	BidStatusAccepted = "accepted"
	BidStatusOutbid   = "outbid"
)

// MaxBidAmount is the upper bound on any submitted amount or ceiling.
var MaxBidAmount = decimal.NewFromInt(999999)

// Auction represents a single artwork up for auction
type Auction struct {
	ID         string          `db:"id" json:"id"`
	Title      string          `db:"title" json:"title"`
	Artist     string          `db:"artist" json:"artist"`
	Status     string          `db:"status" json:"status"`
	CurrentBid decimal.Decimal `db:"current_bid" json:"currentBid"`
	EndTime    time.Time       `db:"end_time" json:"endTime"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Bid represents one row of the bid ledger.
//
// BidAmount is the publicly visible amount attributed to the row. For
// the leading bid it may sit above SubmittedBidAmount (proxy
// auto-raise), but never above MaximumBidAmount. MaximumBidAmount is
// the bidder's private ceiling and must never be exposed to anyone but
// its owner, hence the "-" json tag.
type Bid struct {
	BidID              string          `db:"id" json:"bid_id"`
	AuctionID          string          `db:"auction_id" json:"auction_id"`
	BidderName         string          `db:"bidder_name" json:"bidder_name"`
	BidderEmail        string          `db:"bidder_email" json:"-"`
	BidderPhone        string          `db:"bidder_phone" json:"-"`
	BidAmount          decimal.Decimal `db:"bid_amount" json:"bid_amount"`
	SubmittedBidAmount decimal.Decimal `db:"submitted_bid_amount" json:"-"`
	MaximumBidAmount   decimal.Decimal `db:"maximum_bid_amount" json:"-"`
	Status             string          `db:"status" json:"status"`
	BidTime            time.Time       `db:"bid_time" json:"bid_time"`
}

// ValidMoney reports whether d is a well-formed monetary amount:
// at most 2 decimal places and not beyond MaxBidAmount.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.LessThanOrEqual(MaxBidAmount)
}
