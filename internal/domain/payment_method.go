package domain

type PaymentKind string

const (
	PaymentKindCard      PaymentKind = "card"
	PaymentKindGooglePay PaymentKind = "googlepay"
	PaymentKindJazzCash  PaymentKind = "jazzcash"
)

// DisplayName is the label shown on order confirmations and history.
func (k PaymentKind) DisplayName() string {
	switch k {
	case PaymentKindCard:
		return "Credit/Debit Card"
	case PaymentKindGooglePay:
		return "Google Pay"
	case PaymentKindJazzCash:
		return "JazzCash"
	default:
		return "Unknown"
	}
}

func (k PaymentKind) String() string {
	return string(k)
}

// PaymentMethod is implemented only by Card, JazzCash and GooglePay.
type PaymentMethod interface {
	Kind() PaymentKind
	paymentMethod()
}

type Card struct {
	Number string
	Expiry string
	CVV    string
	Holder string
}

func (Card) Kind() PaymentKind { return PaymentKindCard }
func (Card) paymentMethod()    {}

type JazzCash struct {
	MobileNumber string
	PIN          string
}

func (JazzCash) Kind() PaymentKind { return PaymentKindJazzCash }
func (JazzCash) paymentMethod()    {}

type GooglePay struct{}

func (GooglePay) Kind() PaymentKind { return PaymentKindGooglePay }
func (GooglePay) paymentMethod()    {}
