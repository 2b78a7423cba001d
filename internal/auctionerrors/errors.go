package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrNoLeadingBid    = errors.New("no leading bid for auction")
)

// business logic errors
var (
	ErrValidation     = errors.New("invalid bid")
	ErrAuctionNotLive = errors.New("auction is not live")
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrInvalidCeiling = errors.New("maximum bid is below the bid amount")
)

// ErrConcurrencyConflict means the auction was updated by another bid
// between this request's snapshot read and its write. The request's
// own writes have been rolled back; the caller should retry.
var ErrConcurrencyConflict = errors.New("auction was updated by another bid, please retry")
