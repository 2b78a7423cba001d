package handler

import (
	"context"
	"net/http"

	bidding "auction-service/internal/biddingService"
	model "auction-service/internal/models"
	"auction-service/services/bidding/helpers"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, in bidding.PlaceBidInput) (bidding.PlaceBidResult, error)
	GetAuction(ctx context.Context, auctionID string) (*model.Auction, error)
	ListLiveAuctions(ctx context.Context) ([]model.Auction, error)
	CloseAuction(ctx context.Context, auctionID string) (bidding.CloseAuctionResult, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(c.Request.Context(), bidding.PlaceBidInput{
		AuctionID:   req.AuctionID,
		BidderName:  req.BidderName,
		BidderEmail: req.BidderEmail,
		BidderPhone: req.BidderPhone,
		BidAmount:   req.BidAmount,
		MaximumBid:  req.MaximumBid,
	})
	if err != nil {
		utils.JSONError(c, helpers.MapErrorToHTTP(err), helpers.ClientMessage(err))
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": req.AuctionID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.PlaceBidResponse{
		Success: true,
		Status:  result.Outcome,
		Bid: helpers.BidSummary{
			ID:              result.Bid.BidID,
			Amount:          result.Bid.BidAmount,
			SubmittedAmount: result.Bid.SubmittedBidAmount,
			MaximumAmount:   result.Bid.MaximumBidAmount,
		},
		CurrentBid: result.CurrentBid,
	}

	utils.JSONResponse(c, http.StatusOK, resp)
	helpers.LogSuccess("PlaceBidHandler", "bid processed", map[string]any{
		"bid_id":      result.Bid.BidID,
		"auction_id":  req.AuctionID,
		"outcome":     result.Outcome,
		"current_bid": result.CurrentBid.StringFixed(2),
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *BiddingHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListLiveAuctions(c.Request.Context())
	if err != nil {
		utils.JSONError(c, helpers.MapErrorToHTTP(err), helpers.ClientMessage(err))
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auctions": auctions})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		utils.JSONError(c, helpers.MapErrorToHTTP(err), helpers.ClientMessage(err))
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction)
}

// CloseAuctionHandler handles POST /auctions/:auction_id/close
func (h *BiddingHandler) CloseAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	result, err := h.service.CloseAuction(c.Request.Context(), auctionID)
	if err != nil {
		utils.JSONError(c, helpers.MapErrorToHTTP(err), helpers.ClientMessage(err))
		utils.Error("CloseAuctionHandler: failed to close auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.CloseAuctionResponse{
		Success:   true,
		AuctionID: result.Auction.ID,
		Status:    result.Auction.Status,
	}
	if result.Winner != nil {
		resp.WinnerBidID = result.Winner.BidID
	}

	utils.JSONResponse(c, http.StatusOK, resp)
	helpers.LogSuccess("CloseAuctionHandler", "auction closed", map[string]any{
		"auction_id": result.Auction.ID,
		"has_winner": result.Winner != nil,
	})
}
