package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrOrderNotFound            = errors.New("order not found")
	ErrEmptyItems               = errors.New("empty items")
	ErrQuantityInvalid          = errors.New("quantity must be > 0")
	ErrProductNotFound          = errors.New("product not found")
	ErrProductInactive          = errors.New("product inactive")
	ErrVariantRequired          = errors.New("variant required")
	ErrVariantNotFound          = errors.New("variant not found")
	ErrVariantNotAllowed        = errors.New("product has no variants")
	ErrInsufficientStock        = errors.New("not enough stock")
	ErrPromoNotFound            = errors.New("promo code not found")
	ErrPromoInactive            = errors.New("promo code inactive")
	ErrPromoLimitReached        = errors.New("promo code limit reached")
	ErrInvalidStatusTransition  = errors.New("invalid order status transition")
	ErrTrackingNumberRequired   = errors.New("tracking number required")
	ErrTagNotFound              = errors.New("tag not found")
	ErrTagAlreadyExists         = errors.New("tag already exists")
	ErrPromoCodeAlreadyExists   = errors.New("promo code already exists")
)
