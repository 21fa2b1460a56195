package vivenu

// StatusNew is the only state this adapter may act on. Terminal labels
// (SUCCEEDED, FAILED, ...) are platform-defined and treated as opaque
// strings; the adapter never reinterprets them.
const (
	StatusNew       = "NEW"
	StatusSucceeded = "SUCCEEDED"
)

type Customer struct {
	Email string `json:"email"`
}

// PaymentRequest is a pending or resolved charge owned by the ticketing
// platform. The adapter only reads it and requests transitions.
type PaymentRequest struct {
	ID               string   `json:"_id"`
	Status           string   `json:"status"`
	Amount           float64  `json:"amount"` // major units
	Currency         string   `json:"currency"`
	Customer         Customer `json:"customer"`
	SuccessReturnURL string   `json:"successReturnUrl"`
	FailureReturnURL string   `json:"failureReturnUrl"`
}

type Transaction struct {
	ID         string `json:"_id"`
	CheckoutID string `json:"checkoutId"`
}

type CheckoutPayment struct {
	ID               string `json:"_id"`
	PaymentRequestID string `json:"paymentRequestId"`
}

// CheckoutPayments is the paginated payment listing for one checkout.
// Docs may be empty; callers treat a missing docs[0] as not-found.
type CheckoutPayments struct {
	Docs []CheckoutPayment `json:"docs"`
}
