package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/domain"
	"example.com/storefront/internal/middleware"
	"example.com/storefront/internal/payment"
	"example.com/storefront/internal/service"
	"example.com/storefront/pkg/logger"
)

// OrderHandler — обработчик заказов.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler создаёт новый обработчик заказов.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder оформляет новый заказ.
// POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var body CreateOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Debug().Err(err).Msg("Невалидный запрос на оформление заказа")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	items := make([]domain.OrderItem, len(body.OrderItems))
	for i, item := range body.OrderItems {
		items[i] = domain.OrderItem{
			ProductID: item.Product,
			Name:      item.Name,
			Quantity:  item.Qty,
			UnitPrice: item.Price,
			Image:     item.Image,
		}
	}

	order, err := h.orders.PlaceOrder(ctx, req, service.PlaceOrderInput{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			Address:    body.ShippingAddress.Address,
			City:       body.ShippingAddress.City,
			PostalCode: body.ShippingAddress.PostalCode,
			Country:    body.ShippingAddress.Country,
		},
		PaymentMethod: body.PaymentMethod,
	})
	if err != nil {
		HandleDomainError(c, err, "CreateOrder")
		return
	}

	c.JSON(http.StatusCreated, orderToResponse(order))
}

// GetOrder возвращает заказ по ID.
// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, req, c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "GetOrder")
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// ListMyOrders возвращает заказы текущего пользователя.
// GET /api/orders/myorders
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListMyOrders(ctx, req)
	if err != nil {
		HandleDomainError(c, err, "ListMyOrders")
		return
	}

	c.JSON(http.StatusOK, ordersToResponse(orders))
}

// ListOrders возвращает все заказы витрины. Только для администраторов.
// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListAllOrders(ctx, req)
	if err != nil {
		HandleDomainError(c, err, "ListOrders")
		return
	}

	c.JSON(http.StatusOK, ordersToResponse(orders))
}

// PayOrder принимает платёжное подтверждение и отмечает заказ оплаченным.
// PUT /api/orders/:id/pay
func (h *OrderHandler) PayOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	var body PayOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Debug().Err(err).Msg("Невалидное платёжное подтверждение")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные платёжного подтверждения",
		})
		return
	}

	conf := payment.Confirmation{
		ID:         body.ID,
		Status:     body.Status,
		UpdateTime: body.UpdateTime,
		PayerEmail: body.Payer.EmailAddress,
		Amount:     body.Amount,
		Currency:   body.Currency,
	}

	order, err := h.orders.PayOrder(ctx, req, c.Param("id"), conf)
	if err != nil {
		HandleDomainError(c, err, "PayOrder")
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// DeliverOrder отмечает заказ доставленным. Только для администраторов.
// PUT /api/orders/:id/deliver
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := requesterFromContext(c)
	if !ok {
		return
	}

	order, err := h.orders.DeliverOrder(ctx, req, c.Param("id"))
	if err != nil {
		HandleDomainError(c, err, "DeliverOrder")
		return
	}

	c.JSON(http.StatusOK, orderToResponse(order))
}

// requesterFromContext собирает Requester из данных auth middleware.
// Возвращает false и отправляет 401, если пользователь не аутентифицирован.
func requesterFromContext(c *gin.Context) (service.Requester, bool) {
	log := logger.FromContext(c.Request.Context())

	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		log.Warn().Msg("user_id не найден в контексте")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Требуется авторизация",
		})
		return service.Requester{}, false
	}

	return service.Requester{
		UserID:  userID,
		IsAdmin: c.GetBool(middleware.CtxIsAdmin),
	}, true
}
