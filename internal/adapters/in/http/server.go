// Package http exposes the marketplace order API over REST.
// Handlers translate requests into commands and queries, and map the
// transition failure taxonomy onto HTTP status codes.
package http

import (
	"errors"
	"net/http"

	"marketorder/internal/core/application/usecases/commands"
	"marketorder/internal/core/application/usecases/queries"
	"marketorder/internal/core/domain/model/kernel"
	"marketorder/internal/core/domain/model/order"
	"marketorder/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler    commands.CreateOrderCommandHandler
	changeStatusHandler   commands.ChangeOrderStatusCommandHandler
	confirmPaymentHandler commands.ConfirmPaymentCommandHandler

	getOrderHandler        queries.GetOrderQueryHandler
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler
}

// NewServer creates the HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	changeStatusHandler commands.ChangeOrderStatusCommandHandler,
	confirmPaymentHandler commands.ConfirmPaymentCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		changeStatusHandler:    changeStatusHandler,
		confirmPaymentHandler:  confirmPaymentHandler,
		getOrderHandler:        getOrderHandler,
		getActiveOrdersHandler: getActiveOrdersHandler,
	}
}

// RegisterRoutes mounts the API. Order routes require the auth middleware; the
// payment webhook is called by the payment service and is mounted without it.
func (s *Server) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	orders := e.Group("/marketplace/orders")
	orders.Use(auth)
	orders.POST("", s.CreateOrder)
	orders.GET("", s.GetActiveOrders)
	orders.GET("/:id", s.GetOrder)
	orders.PUT("/:id/status", s.ChangeOrderStatus)
	orders.PUT("/:id/start-processing", s.StartProcessing)
	orders.PUT("/:id/start-work", s.StartWork)

	e.POST("/marketplace/payments/webhook", s.PaymentWebhook)
}

type createOrderRequest struct {
	ListingID            string  `json:"listingId"`
	SellerID             string  `json:"sellerId"`
	OfferID              *string `json:"offerId"`
	Amount               string  `json:"amount"`
	Currency             string  `json:"currency"`
	ShippingAddress      string  `json:"shippingAddress"`
	ExpectedDeliveryDays int     `json:"expectedDeliveryDays"`
	MaxRevisions         int     `json:"maxRevisions"`
}

// CreateOrder handles POST /marketplace/orders. The authenticated user becomes
// the buyer; a payment hold for the full amount is placed before the order is
// persisted in pending_payment.
func (s *Server) CreateOrder(c echo.Context) error {
	buyerID, ok := userIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	listingID, err := kernel.UUIDFromString(req.ListingID)
	if err != nil {
		return badRequest(c, "invalid listing id")
	}
	sellerID, err := kernel.UUIDFromString(req.SellerID)
	if err != nil {
		return badRequest(c, "invalid seller id")
	}

	var offerID *kernel.UUID
	if req.OfferID != nil {
		id, offerErr := kernel.UUIDFromString(*req.OfferID)
		if offerErr != nil {
			return badRequest(c, "invalid offer id")
		}
		offerID = &id
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "invalid amount")
	}
	price, err := kernel.NewMoney(amount, req.Currency)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), listingID, buyerID, sellerID, offerID,
		price, req.ShippingAddress, req.ExpectedDeliveryDays, req.MaxRevisions,
	)
	if err != nil {
		return badRequest(c, err.Error())
	}

	aggregate, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"order":   orderDocument(aggregate, order.ActorBuyer),
	})
}

// GetOrder handles GET /marketplace/orders/:id. Only the order's buyer or
// seller may read it; allowedTransitions reflects the caller's role.
func (s *Server) GetOrder(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	doc, err := s.getOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": doc})
}

// GetActiveOrders handles GET /marketplace/orders - lists the authenticated
// user's non-terminal orders on either side of the deal.
func (s *Server) GetActiveOrders(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	query, err := queries.NewGetActiveOrdersQuery(userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	docs, err := s.getActiveOrdersHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": docs})
}

type changeStatusRequest struct {
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	CancelReason string `json:"cancelReason"`
}

// ChangeOrderStatus handles PUT /marketplace/orders/:id/status - the general
// transition endpoint. The target status comes from the body; the acting role
// is derived from the authenticated user, never from the request.
func (s *Server) ChangeOrderStatus(c echo.Context) error {
	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return badRequest(c, "unknown status "+req.Status)
	}

	return s.transition(c, target, req.Notes, req.CancelReason)
}

// StartProcessing handles PUT /marketplace/orders/:id/start-processing - the
// seller acknowledges a paid order. Equivalent to requesting status processing.
func (s *Server) StartProcessing(c echo.Context) error {
	return s.transition(c, order.Processing, "", "")
}

// StartWork handles PUT /marketplace/orders/:id/start-work - the seller begins
// active work. Equivalent to requesting status in_progress.
func (s *Server) StartWork(c echo.Context) error {
	return s.transition(c, order.InProgress, "", "")
}

func (s *Server) transition(c echo.Context, target order.Status, notes, cancelReason string) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, target, userID, notes, cancelReason)
	if err != nil {
		return badRequest(c, err.Error())
	}

	aggregate, err := s.changeStatusHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"order":   orderDocument(aggregate, aggregate.ActorFor(userID)),
	})
}

type paymentWebhookRequest struct {
	OrderID string `json:"orderId"`
	HoldID  string `json:"holdId"`
}

// PaymentWebhook handles POST /marketplace/payments/webhook - the payment
// service's confirmation callback. The hold is re-verified against the gateway
// before the order moves to paid; redelivered callbacks are no-ops.
func (s *Server) PaymentWebhook(c echo.Context) error {
	var req paymentWebhookRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	cmd, err := commands.NewConfirmPaymentCommand(orderID, req.HoldID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	aggregate, err := s.confirmPaymentHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"status":  aggregate.Status().String(),
	})
}

// errorResponse maps a use-case error onto the HTTP status for its taxonomy
// class. Invalid transitions additionally carry the currently allowed targets.
func errorResponse(c echo.Context, err error) error {
	var invalidTransition *order.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return c.JSON(http.StatusConflict, echo.Map{
			"success":            false,
			"error":              err.Error(),
			"allowedTransitions": statusNames(invalidTransition.Allowed),
		})
	}

	switch {
	case errors.Is(err, order.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": err.Error()})
	case errors.Is(err, order.ErrRevisionLimitExceeded),
		errors.Is(err, order.ErrPaymentPreconditionFailed):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "error": err.Error()})
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": err.Error()})
	case errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"success": false, "error": err.Error()})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false, "error": "internal server error",
		})
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "not authenticated"})
}

// orderDocument shapes an aggregate into the wire document returned by write
// operations, with allowedTransitions computed for the acting role.
func orderDocument(aggregate *order.Order, actor order.Actor) queries.OrderResponse {
	var offerID *string
	if aggregate.OfferID() != nil {
		s := aggregate.OfferID().String()
		offerID = &s
	}

	log := aggregate.TransitionLog()
	logDocs := make([]queries.TransitionLogEntryResponse, len(log))
	for i, entry := range log {
		logDocs[i] = queries.TransitionLogEntryResponse{
			From:  entry.From.String(),
			To:    entry.To.String(),
			Actor: entry.Actor.String(),
			At:    entry.At,
			Notes: entry.Notes,
		}
	}

	return queries.OrderResponse{
		ID:        aggregate.ID().String(),
		ListingID: aggregate.ListingID().String(),
		BuyerID:   aggregate.BuyerID().String(),
		SellerID:  aggregate.SellerID().String(),
		OfferID:   offerID,

		Amount:       aggregate.Price().Amount().String(),
		Currency:     aggregate.Price().Currency(),
		PlatformFee:  aggregate.PlatformFee().Amount().String(),
		SellerPayout: aggregate.SellerPayout().Amount().String(),

		Status:             aggregate.Status().String(),
		AllowedTransitions: statusNames(aggregate.AllowedTransitionsFor(actor)),

		PaymentIntentID: aggregate.PaymentIntentID(),
		PaymentStatus:   aggregate.PaymentStatus().String(),
		PaymentReleased: aggregate.PaymentReleased(),
		ReleasedAt:      aggregate.ReleasedAt(),

		ShippingAddress:      aggregate.ShippingAddress(),
		ExpectedDeliveryDays: aggregate.ExpectedDeliveryDays(),
		DeliveredAt:          aggregate.DeliveredAt(),
		CompletedAt:          aggregate.CompletedAt(),
		CancelReason:         aggregate.CancelReason(),

		RevisionCount: aggregate.RevisionCount(),
		MaxRevisions:  aggregate.MaxRevisions(),
		RevisionNotes: aggregate.RevisionNotes(),

		TransitionLog: logDocs,

		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}
