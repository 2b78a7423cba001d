// Package proxy implements the maximum-bid (proxy) auction resolution
// rules: given the auction's current visible bid, an incoming bid with
// an optional private ceiling, and the current leader's state, it
// decides who leads and at what publicly visible amount. The visible
// amount only ever rises by the minimum needed to hold the lead, so a
// bidder's true ceiling is never revealed.
//
// The package is pure computation: no I/O, no clock, no store.
package proxy

import (
	"fmt"

	"auction-service/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// MinIncrement is the smallest amount by which a new bid must exceed
// the current visible bid, in currency units.
var MinIncrement = decimal.NewFromInt(1)

// Leader is a snapshot of the currently accepted bid: its visible
// amount and its private ceiling.
type Leader struct {
	Amount  decimal.Decimal
	Ceiling decimal.Decimal
}

// Resolution is the outcome of resolving one incoming bid.
type Resolution struct {
	// IncomingLeads reports whether the incoming bid ends up leading.
	IncomingLeads bool

	// IncomingVisible is the visible amount to store on the incoming
	// bid's row: the auto-raised amount when it leads, the submitted
	// amount when it loses (a losing bid never auto-raises).
	IncomingVisible decimal.Decimal

	// CurrentBid is the auction's new visible current bid, i.e. the
	// visible amount of whichever bid leads after resolution.
	CurrentBid decimal.Decimal

	// PreviousLeaderAmount is set when the previous leader retains the
	// lead and its visible amount auto-raises to stay ahead. Nil when
	// the previous leader is displaced or its amount is unchanged.
	PreviousLeaderAmount *decimal.Decimal
}

// Resolve applies the proxy resolution rules.
//
// currentBid is the auction's visible current bid, submitted the
// incoming bidder's typed amount, ceiling their private maximum
// (callers default it to submitted when absent), prev the current
// leader or nil before any bid exists.
//
// Ties on ceiling go to the previous leader: a challenger must exceed
// the standing ceiling strictly to take the lead.
func Resolve(currentBid, submitted, ceiling decimal.Decimal, prev *Leader) (Resolution, error) {
	for _, d := range []decimal.Decimal{currentBid, submitted, ceiling} {
		if !d.Equal(d.Truncate(2)) {
			return Resolution{}, fmt.Errorf("resolve: %w: amounts must have at most 2 decimal places", auctionerrors.ErrValidation)
		}
	}

	minRequired := currentBid.Add(MinIncrement)
	if submitted.LessThan(minRequired) {
		return Resolution{}, fmt.Errorf("resolve: %w: bid must be at least %s", auctionerrors.ErrBidTooLow, minRequired.StringFixed(2))
	}
	if ceiling.LessThan(submitted) {
		return Resolution{}, fmt.Errorf("resolve: %w", auctionerrors.ErrInvalidCeiling)
	}

	if prev == nil {
		return Resolution{
			IncomingLeads:   true,
			IncomingVisible: submitted,
			CurrentBid:      submitted,
		}, nil
	}

	if ceiling.GreaterThan(prev.Ceiling) {
		// Incoming wins: raise its visible amount only as far as needed
		// to beat the standing ceiling by the minimum increment. The
		// displaced leader's row keeps the amount it last held.
		visible := decimal.Max(submitted, decimal.Min(ceiling, prev.Ceiling.Add(MinIncrement)))
		return Resolution{
			IncomingLeads:   true,
			IncomingVisible: visible,
			CurrentBid:      visible,
		}, nil
	}

	// Incoming loses (equal ceilings included): the standing leader
	// auto-raises to the minimum needed to stay ahead of the new
	// ceiling, bounded by its own ceiling.
	raised := decimal.Max(prev.Amount, decimal.Min(prev.Ceiling, ceiling.Add(MinIncrement)))
	res := Resolution{
		IncomingLeads:   false,
		IncomingVisible: submitted,
		CurrentBid:      raised,
	}
	if !raised.Equal(prev.Amount) {
		res.PreviousLeaderAmount = &raised
	}
	return res, nil
}
