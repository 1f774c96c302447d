package events

import "time"

// Event types published to the order events topic.
const (
	TypeOrderCreated   = "order.created"
	TypeOrderCompleted = "order.completed"
	TypeOrderRefunded  = "order.refunded"
	TypeOrderCancelled = "order.cancelled"
	TypeOrderReported  = "order.reported"
	TypePaymentSettled = "payment.settled"
)

// Envelope is the wire format for every published event. Data holds the
// type-specific payload.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// OrderEvent is the payload for all order.* events.
type OrderEvent struct {
	OrderID     string `json:"order_id"`
	BuyerEmail  string `json:"buyer_email"`
	SellerEmail string `json:"seller_email"`
	ProductID   string `json:"product_id"`
	Price       int64  `json:"price"`
	Status      string `json:"status"`
}

// PaymentEvent is the payload for payment.settled.
type PaymentEvent struct {
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}
