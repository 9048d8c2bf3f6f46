package models

import "time"

// OrderSide represents the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType represents the execution type of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// OrderRequest is an order submission as accepted by the backend.
// OverrideRisk and OverrideStrategy resubmit past a firewall or
// strategy-mismatch block and are only ever set by the order gate.
type OrderRequest struct {
	Symbol           string    `json:"symbol"`
	Quantity         float64   `json:"qty"`
	Side             OrderSide `json:"side"`
	Type             OrderType `json:"type"`
	TimeInForce      string    `json:"time_in_force"`
	LimitPrice       *float64  `json:"limit_price,omitempty"`
	OverrideRisk     bool      `json:"override_risk"`
	OverrideStrategy bool      `json:"override_strategy"`
}

// Validate checks the request client-side before any network call.
func (r OrderRequest) Validate() error {
	if r.Symbol == "" {
		return &FieldError{Field: "symbol", Message: "symbol is required"}
	}
	if r.Quantity <= 0 {
		return &FieldError{Field: "qty", Message: "quantity must be positive"}
	}
	if r.Side != OrderSideBuy && r.Side != OrderSideSell {
		return &FieldError{Field: "side", Message: "side must be buy or sell"}
	}
	switch r.Type {
	case OrderTypeMarket:
		if r.LimitPrice != nil {
			return &FieldError{Field: "limit_price", Message: "limit price not allowed on market orders"}
		}
	case OrderTypeLimit:
		if r.LimitPrice == nil || *r.LimitPrice <= 0 {
			return &FieldError{Field: "limit_price", Message: "limit price required for limit orders"}
		}
	default:
		return &FieldError{Field: "type", Message: "type must be market or limit"}
	}
	return nil
}

// FieldError reports a client-side validation failure on one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// Order is an order as reported by the backend.
type Order struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Quantity    float64   `json:"qty"`
	FilledQty   float64   `json:"filled_qty"`
	Side        OrderSide `json:"side"`
	Type        OrderType `json:"type"`
	LimitPrice  *float64  `json:"limit_price"`
	FilledPrice *float64  `json:"filled_avg_price"`
	Status      string    `json:"status"`
	SubmittedAt string    `json:"submitted_at"`
}

// OutcomeKind tags the terminal state of a settled order submission.
// Exactly one kind is observable per submission.
type OutcomeKind string

const (
	OutcomeAccepted        OutcomeKind = "accepted"
	OutcomeBlockedCritical OutcomeKind = "blocked_critical"
	OutcomeBlockedWarning  OutcomeKind = "blocked_warning"
	OutcomeFailed          OutcomeKind = "failed"
)

// OrderOutcome is the settled result of one order submission.
// Which fields are meaningful depends on Kind: Order for Accepted,
// Reason/RiskScore for BlockedCritical, Reason/CompatibilityScore for
// BlockedWarning, Message for Failed.
type OrderOutcome struct {
	Kind               OutcomeKind
	Order              *Order
	Reason             string
	RiskScore          float64
	CompatibilityScore float64
	Message            string
	SettledAt          time.Time
}

// Blocked reports whether the outcome is one of the two block variants,
// which offer a user-initiated override.
func (o OrderOutcome) Blocked() bool {
	return o.Kind == OutcomeBlockedCritical || o.Kind == OutcomeBlockedWarning
}
