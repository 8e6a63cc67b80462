package events

import "context"

// Event types
const (
	EventEscrowStatusChanged   = "escrow_status_changed"
	EventProductCreated        = "product_created"
	EventProductSold           = "product_sold"
	EventDonationSubmitted     = "donation_submitted"
	EventDonationDecided       = "donation_decided"
	EventTokensPurchased       = "tokens_purchased"
	EventExchangeOfferCreated  = "exchange_offer_created"
	EventExchangeOfferAccepted = "exchange_offer_accepted"
	EventCreatorStatusChanged  = "creator_status_changed"
	EventWebhookNotification   = "webhook_notification"
)

// Streams
const (
	StreamMarketplace = "greenloop:marketplace"
	StreamDonations   = "greenloop:donations"
	StreamNotify      = "greenloop:notify"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
