package helpers

import (
	"errors"
	"net/http"

	"auction-service/internal/auctionerrors"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Messages come from the wrapped error chain so callers see the detail
// they need to retry (e.g. the minimum acceptable bid).
func MapErrorToHTTP(err error) int {
	switch {
	case errors.Is(err, auctionerrors.ErrValidation),
		errors.Is(err, auctionerrors.ErrBidTooLow),
		errors.Is(err, auctionerrors.ErrInvalidCeiling):
		return http.StatusBadRequest
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound
	case errors.Is(err, auctionerrors.ErrAuctionNotLive),
		errors.Is(err, auctionerrors.ErrAuctionEnded),
		errors.Is(err, auctionerrors.ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage extracts the user-facing message for an error. Bid-
// too-low and validation errors keep their wrapped detail (it carries
// the minimum acceptable bid or the offending field) stripped of
// internal layer prefixes; other sentinels surface verbatim.
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrBidTooLow),
		errors.Is(err, auctionerrors.ErrValidation):
		return trimPrefixes(err.Error())
	}

	sentinels := []error{
		auctionerrors.ErrInvalidCeiling,
		auctionerrors.ErrAuctionNotFound,
		auctionerrors.ErrAuctionNotLive,
		auctionerrors.ErrAuctionEnded,
		auctionerrors.ErrConcurrencyConflict,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal server error"
}

// trimPrefixes drops the "layer:" wrapping prefixes so the client sees
// "bid amount too low: bid must be at least 101.00" rather than
// "service: resolve: ...".
func trimPrefixes(msg string) string {
	for _, prefix := range []string{"service: ", "resolve: "} {
		for len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			msg = msg[len(prefix):]
		}
	}
	return msg
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
