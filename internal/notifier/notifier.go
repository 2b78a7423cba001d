// Package notifier dispatches the email/SMS side effects of bidding:
// bid confirmations, outbid alerts, admin alerts, and winner
// notifications. Delivery is best-effort; callers fire it after the
// transactional outcome has committed and never let a failure here
// change that outcome.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	model "auction-service/internal/models"

	"github.com/shopspring/decimal"
)

// NotificationSender is the outbound notification interface consumed
// by the bidding service.
type NotificationSender interface {
	SendBidConfirmation(ctx context.Context, auction model.Auction, bid model.Bid) error
	SendOutbidAlert(ctx context.Context, auction model.Auction, outbid model.Bid, newCurrentBid decimal.Decimal) error
	SendAdminAlert(ctx context.Context, auction model.Auction, bid model.Bid) error
	SendWinnerNotification(ctx context.Context, auction model.Auction, winner model.Bid) error
}

// Config carries the provider credentials. Empty credentials disable
// the corresponding channel with a warning instead of failing.
type Config struct {
	ResendAPIKey string
	EmailFrom    string
	AdminEmail   string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
}

const (
	resendEndpoint = "https://api.resend.com/emails"
	twilioBaseURL  = "https://api.twilio.com/2010-04-01"
)

// EmailSMSNotifier sends email through the Resend REST API and SMS
// through the Twilio REST API.
type EmailSMSNotifier struct {
	cfg    Config
	client *http.Client
}

func NewEmailSMSNotifier(cfg Config) *EmailSMSNotifier {
	return &EmailSMSNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *EmailSMSNotifier) SendBidConfirmation(ctx context.Context, auction model.Auction, bid model.Bid) error {
	subject := fmt.Sprintf("Bid confirmation for %q", auction.Title)
	html := fmt.Sprintf(
		"<h2>Bid Placed Successfully!</h2>"+
			"<p>Hi %s,</p>"+
			"<p>Your bid has been placed on <strong>%s</strong> by %s.</p>"+
			"<p><strong>Your bid:</strong> $%s</p>"+
			"<p><strong>Auction ends:</strong> %s</p>"+
			"<p>We'll notify you if you're outbid or if you win the auction.</p>"+
			"<p>Good luck!</p>",
		bid.BidderName, auction.Title, auction.Artist,
		bid.SubmittedBidAmount.StringFixed(2), auction.EndTime.Format(time.RFC1123))
	return n.sendEmail(ctx, bid.BidderEmail, subject, html)
}

func (n *EmailSMSNotifier) SendOutbidAlert(ctx context.Context, auction model.Auction, outbid model.Bid, newCurrentBid decimal.Decimal) error {
	subject := fmt.Sprintf("You've been outbid on %q", auction.Title)
	html := fmt.Sprintf(
		"<h2>You've been outbid!</h2>"+
			"<p>Hi %s,</p>"+
			"<p>Someone has placed a higher bid on <strong>%s</strong> by %s.</p>"+
			"<p><strong>New highest bid:</strong> $%s</p>"+
			"<p><strong>Your bid was:</strong> $%s</p>"+
			"<p>Place a new bid to stay in the running!</p>",
		outbid.BidderName, auction.Title, auction.Artist,
		newCurrentBid.StringFixed(2), outbid.BidAmount.StringFixed(2))
	if err := n.sendEmail(ctx, outbid.BidderEmail, subject, html); err != nil {
		return err
	}

	if outbid.BidderPhone != "" {
		body := fmt.Sprintf("You've been outbid on %q. New highest bid: $%s. Bid again to stay in the running!",
			auction.Title, newCurrentBid.StringFixed(2))
		return n.sendSMS(ctx, outbid.BidderPhone, body)
	}
	return nil
}

func (n *EmailSMSNotifier) SendAdminAlert(ctx context.Context, auction model.Auction, bid model.Bid) error {
	if n.cfg.AdminEmail == "" {
		return nil
	}
	subject := fmt.Sprintf("New bid on %q", auction.Title)
	html := fmt.Sprintf(
		"<h2>New Bid Received</h2>"+
			"<p><strong>Auction:</strong> %s by %s</p>"+
			"<p><strong>Bidder:</strong> %s (%s)</p>"+
			"<p><strong>Visible bid:</strong> $%s</p>"+
			"<p><strong>Current bid:</strong> $%s</p>",
		auction.Title, auction.Artist, bid.BidderName, bid.BidderEmail,
		bid.BidAmount.StringFixed(2), auction.CurrentBid.StringFixed(2))
	return n.sendEmail(ctx, n.cfg.AdminEmail, subject, html)
}

func (n *EmailSMSNotifier) SendWinnerNotification(ctx context.Context, auction model.Auction, winner model.Bid) error {
	subject := fmt.Sprintf("You won %q!", auction.Title)
	html := fmt.Sprintf(
		"<h2>Congratulations!</h2>"+
			"<p>Hi %s,</p>"+
			"<p>You won <strong>%s</strong> by %s with a bid of $%s.</p>"+
			"<p>We'll be in touch shortly to arrange payment and delivery.</p>",
		winner.BidderName, auction.Title, auction.Artist, winner.BidAmount.StringFixed(2))
	if err := n.sendEmail(ctx, winner.BidderEmail, subject, html); err != nil {
		return err
	}

	if winner.BidderPhone != "" {
		body := fmt.Sprintf("Congratulations! You won %q with a bid of $%s.",
			auction.Title, winner.BidAmount.StringFixed(2))
		return n.sendSMS(ctx, winner.BidderPhone, body)
	}
	return nil
}

// NoopSender discards all notifications. Used in tests and local runs
// without provider credentials.
type NoopSender struct{}

func (NoopSender) SendBidConfirmation(context.Context, model.Auction, model.Bid) error {
	return nil
}

func (NoopSender) SendOutbidAlert(context.Context, model.Auction, model.Bid, decimal.Decimal) error {
	return nil
}

func (NoopSender) SendAdminAlert(context.Context, model.Auction, model.Bid) error {
	return nil
}

func (NoopSender) SendWinnerNotification(context.Context, model.Auction, model.Bid) error {
	return nil
}

// maskPhone hides all but the last four digits for logging.
func maskPhone(phone string) string {
	masked := []byte(phone)
	digits := 0
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	seen := 0
	for i, c := range masked {
		if c >= '0' && c <= '9' {
			seen++
			if seen <= digits-4 {
				masked[i] = '*'
			}
		}
	}
	return string(masked)
}

// normalizePhone converts a phone number to E.164. Numbers with a
// leading zero get the default country prefix, matching how the
// storefront collects them.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	normalized := digits.String()
	if strings.HasPrefix(normalized, "0") {
		normalized = "61" + normalized[1:]
	}
	return "+" + normalized
}
