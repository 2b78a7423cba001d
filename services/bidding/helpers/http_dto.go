package helpers

import (
	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID   string           `json:"auctionId" binding:"required,uuid"`
	BidderName  string           `json:"bidderName" binding:"required,min=1,max=100"`
	BidderEmail string           `json:"bidderEmail" binding:"required,email,max=255"`
	BidderPhone string           `json:"bidderPhone" binding:"omitempty,max=20"`
	BidAmount   decimal.Decimal  `json:"bidAmount" binding:"required"`
	MaximumBid  *decimal.Decimal `json:"maximumBid" binding:"omitempty"`
}

// BidSummary echoes the caller's own bid back to them. MaximumAmount
// here is always the caller's own ceiling, never anyone else's.
type BidSummary struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	SubmittedAmount decimal.Decimal `json:"submittedAmount"`
	MaximumAmount   decimal.Decimal `json:"maximumAmount"`
}

type PlaceBidResponse struct {
	Success    bool            `json:"success"`
	Status     string          `json:"status"`
	Bid        BidSummary      `json:"bid"`
	CurrentBid decimal.Decimal `json:"currentBid"`
}

type CloseAuctionResponse struct {
	Success   bool   `json:"success"`
	AuctionID string `json:"auctionId"`
	Status    string `json:"status"`
	// WinnerBidID is empty when the auction closed without bids.
	WinnerBidID string `json:"winnerBidId,omitempty"`
}
