package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/payment"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	identity identity.Identity
	log      *zap.Logger
}

func NewCheckoutHandler(id identity.Identity, log *zap.Logger) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		identity: id,
		log:      log,
	}
}

type CardDTO struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Holder string `json:"holder"`
}

type JazzCashDTO struct {
	MobileNumber string `json:"mobile_number"`
	PIN          string `json:"pin"`
}

type CheckoutRequestDTO struct {
	PaymentMethod string              `json:"payment_method"`
	Card          *CardDTO            `json:"card,omitempty"`
	JazzCash      *JazzCashDTO        `json:"jazzcash,omitempty"`
	Delivery      domain.DeliveryInfo `json:"delivery"`
}

type CheckoutResponseDTO struct {
	Order         domain.Order `json:"order"`
	TransactionID string       `json:"transaction_id"`
	Status        string       `json:"status"`
	PaymentName   string       `json:"payment_name"`
	Warning       string       `json:"warning,omitempty"`
}

type CheckoutStateDTO struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (req *CheckoutRequestDTO) paymentMethod() (domain.PaymentMethod, error) {
	switch domain.PaymentKind(req.PaymentMethod) {
	case domain.PaymentKindCard:
		var c CardDTO
		if req.Card != nil {
			c = *req.Card
		}
		return domain.Card{
			Number: payment.FormatCardNumber(c.Number),
			Expiry: payment.FormatExpiry(c.Expiry),
			CVV:    c.CVV,
			Holder: c.Holder,
		}, nil
	case domain.PaymentKindJazzCash:
		var j JazzCashDTO
		if req.JazzCash != nil {
			j = *req.JazzCash
		}
		return domain.JazzCash{MobileNumber: j.MobileNumber, PIN: j.PIN}, nil
	case domain.PaymentKindGooglePay:
		return domain.GooglePay{}, nil
	default:
		return nil, payment.ErrUnsupportedMethod
	}
}

// POST /api/v1/checkout
// Blocks for the simulated payment latency.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method, err := req.paymentMethod()
	if err != nil {
		handleError(w, err)
		return
	}

	s := sessionFromContext(r.Context())
	userID := h.identity.UserID(r.Context())

	if card, ok := method.(domain.Card); ok {
		h.log.Info("card checkout submitted",
			zap.String("request_id", getRequestID(r.Context())),
			zap.String("card", payment.MaskCardNumber(card.Number)))
	}

	conf, err := s.Checkout.Submit(r.Context(), userID, method, req.Delivery)
	if err != nil {
		handleError(w, err)
		return
	}

	resp := CheckoutResponseDTO{
		Order:         conf.Order,
		TransactionID: conf.Receipt.TransactionID,
		Status:        s.Checkout.State().String(),
		PaymentName:   conf.Order.PaymentMethod.DisplayName(),
	}
	if !conf.Persisted() {
		h.log.Warn("order confirmed without history",
			zap.String("request_id", getRequestID(r.Context())),
			zap.String("order_id", conf.Order.ID))
		resp.Warning = "order confirmed but could not be saved to your order history"
	}

	respondJSON(w, http.StatusCreated, resp)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	resp := CheckoutStateDTO{Status: s.Checkout.State().String()}
	if err := s.Checkout.LastError(); err != nil {
		resp.Error = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}
