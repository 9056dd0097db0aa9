package handlers

import (
	"net/http"
	"strconv"

	"github.com/vladbogun1/tg-shop-miniapp/internal/dto"
	"github.com/vladbogun1/tg-shop-miniapp/internal/middleware"
	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// CreateOrder godoc
// @Summary Оформление заказа из мини-приложения
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Состав заказа"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.BaseError
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	user, ok := middleware.TgUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing user"))
		return
	}
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Невалидное тело заказа", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	in := service.CreateOrderInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
		Comment:      req.Comment,
		PromoCode:    req.PromoCode,
		TgUserID:     user.ID,
		TgUsername:   user.Username,
	}
	for _, it := range req.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid productId", nil))
			return
		}
		item := service.CreateOrderItem{ProductID: productID, Quantity: it.Quantity}
		if it.VariantID != "" {
			variantID, err := uuid.Parse(it.VariantID)
			if err != nil {
				c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid variantId", nil))
				return
			}
			item.VariantID = &variantID
		}
		in.Items = append(in.Items, item)
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// --- админка заказов ---

func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	f := service.OrderListFilter{}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		f.Status = &status
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Offset = n
		}
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	resp := dto.OrderListResponse{Total: total, Orders: make([]dto.OrderResponse, 0, len(orders))}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.ToOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.FindByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *OrderHandler) AdminApproveOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Approve(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *OrderHandler) AdminRejectOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	order, err := h.orders.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *OrderHandler) AdminShipOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("trackingNumber is required", nil))
		return
	}
	order, err := h.orders.Ship(c.Request.Context(), id, req.TrackingNumber)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

func (h *OrderHandler) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
