package dto

import (
	"time"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
)

type CreateOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	VariantID string `json:"variantId" binding:"omitempty,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	CustomerName string                   `json:"customerName" binding:"required"`
	Phone        string                   `json:"phone" binding:"required"`
	Address      string                   `json:"address" binding:"required"`
	Comment      string                   `json:"comment"`
	PromoCode    string                   `json:"promoCode"`
	Items        []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ProductID   string  `json:"productId"`
	VariantID   *string `json:"variantId,omitempty"`
	Title       string  `json:"title"`
	VariantName *string `json:"variantName,omitempty"`
	PriceMinor  int64   `json:"priceMinor"`
	Quantity    int     `json:"quantity"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Status         string              `json:"status"`
	SubtotalMinor  int64               `json:"subtotalMinor"`
	DiscountMinor  int64               `json:"discountMinor"`
	TotalMinor     int64               `json:"totalMinor"`
	Currency       string              `json:"currency"`
	CustomerName   string              `json:"customerName"`
	Phone          string              `json:"phone"`
	Address        string              `json:"address"`
	Comment        string              `json:"comment"`
	TgUserID       int64               `json:"tgUserId"`
	TgUsername     string              `json:"tgUsername"`
	TrackingNumber *string             `json:"trackingNumber,omitempty"`
	PromoCode      *string             `json:"promoCode,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func ToOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		Status:         string(o.Status),
		SubtotalMinor:  o.SubtotalMinor,
		DiscountMinor:  o.DiscountMinor,
		TotalMinor:     o.TotalMinor,
		Currency:       o.Currency,
		CustomerName:   o.CustomerName,
		Phone:          o.Phone,
		Address:        o.Address,
		Comment:        o.Comment,
		TgUserID:       o.TgUserID,
		TgUsername:     o.TgUsername,
		TrackingNumber: o.TrackingNumber,
		PromoCode:      o.PromoCode,
		Items:          make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
	}
	for _, it := range o.Items {
		item := OrderItemResponse{
			ProductID:   it.ProductID.String(),
			Title:       it.TitleSnapshot,
			VariantName: it.VariantNameSnapshot,
			PriceMinor:  it.PriceMinorSnapshot,
			Quantity:    it.Quantity,
		}
		if it.VariantID != nil {
			v := it.VariantID.String()
			item.VariantID = &v
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

type ShipOrderRequest struct {
	TrackingNumber string `json:"trackingNumber" binding:"required"`
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
}

type AppInfoResponse struct {
	BotUsername string `json:"botUsername"`
	Currency    string `json:"currency"`
}

type MeResponse struct {
	TgUserID int64  `json:"tgUserId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}
