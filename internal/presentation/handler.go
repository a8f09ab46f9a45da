package presentation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/navanithaadhav/Herbal-Hot/internal/application"
	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
	"github.com/navanithaadhav/Herbal-Hot/internal/presentation/helpers"
)

type OrdersHandler struct {
	svc *application.OrdersService
}

func NewOrdersHandler(svc *application.OrdersService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(RequireUser)

		r.Post("/", h.CreateOrder)
		r.Get("/myorders", h.ListMyOrders)
		r.With(RequireStaff).Get("/", h.ListOrders)

		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/pay", h.ConfirmPayment)
		r.With(RequireStaff).Put("/{id}/ship", h.MarkShipped)
		r.With(RequireStaff).Put("/{id}/deliver", h.MarkDelivered)
	})
}

// All prices are integers in minor currency units (paise).
type createOrderRequest struct {
	OrderItems      []domain.OrderItem     `json:"orderItems"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      int64                  `json:"itemsPrice"`
	TaxPrice        int64                  `json:"taxPrice"`
	ShippingPrice   int64                  `json:"shippingPrice"`
	TotalPrice      int64                  `json:"totalPrice"`
}

type confirmPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	Status            string `json:"status"`
	UpdateTime        string `json:"update_time"`
	EmailAddress      string `json:"email_address"`
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.OrderItems) == 0 {
		helpers.HttpError(w, http.StatusBadRequest, "No order items")
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), actorFrom(r), application.CreateOrderInput{
		Items:         req.OrderItems,
		Shipping:      req.ShippingAddress,
		PaymentMethod: req.PaymentMethod,
		ItemsMinor:    req.ItemsPrice,
		TaxMinor:      req.TaxPrice,
		ShippingMinor: req.ShippingPrice,
		TotalMinor:    req.TotalPrice,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req confirmPaymentRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	o, err := h.svc.ConfirmPayment(r.Context(), actorFrom(r), id, application.ConfirmPaymentInput{
		PaymentID:      req.RazorpayPaymentID,
		GatewayOrderID: req.RazorpayOrderID,
		Signature:      req.RazorpaySignature,
		Status:         req.Status,
		UpdateTime:     req.UpdateTime,
		Email:          req.EmailAddress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.MarkShipped(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.MarkDelivered(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetByID(r.Context(), actorFrom(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListMine(r.Context(), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			limit = v
		}
	}
	orders, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, orders)
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusNotFound, "Order not found")
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps the domain taxonomy onto HTTP. Verification failures
// deliberately answer with a generic message; the expected signature is
// never echoed back.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		helpers.HttpError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrMissingPaymentFields):
		helpers.HttpError(w, http.StatusBadRequest, "Payment verification failed: Missing required fields")
	case errors.Is(err, domain.ErrVerificationFailed):
		helpers.HttpError(w, http.StatusBadRequest, "Payment verification failed: Invalid signature")
	case errors.Is(err, domain.ErrStaffOnly):
		helpers.HttpError(w, http.StatusForbidden, "Not authorized as staff")
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrNotPaid),
		errors.Is(err, domain.ErrAlreadyShipped),
		errors.Is(err, domain.ErrNotShipped),
		errors.Is(err, domain.ErrAlreadyDelivered):
		helpers.HttpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUserRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrItemPriceInvalid),
		errors.Is(err, domain.ErrAmountNegative),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, domain.ErrPaymentMethodInvalid):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrGatewayUnavailable):
		helpers.HttpError(w, http.StatusBadGateway, "Payment gateway unavailable")
	default:
		logger.Warn("request failed", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "internal error")
	}
}
