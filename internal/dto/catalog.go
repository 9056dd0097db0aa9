package dto

import (
	"time"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
)

type VariantRequest struct {
	Name      string `json:"name" binding:"required"`
	Stock     int    `json:"stock" binding:"gte=0"`
	SortOrder int    `json:"sortOrder"`
}

type ProductRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	PriceMinor  int64            `json:"priceMinor" binding:"gte=0"`
	Stock       int              `json:"stock" binding:"gte=0"`
	Active      bool             `json:"active"`
	Images      []string         `json:"images"`
	Tags        []string         `json:"tags"`
	Variants    []VariantRequest `json:"variants"`
}

type VariantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	SortOrder int    `json:"sortOrder"`
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PriceMinor  int64             `json:"priceMinor"`
	Currency    string            `json:"currency"`
	Stock       int               `json:"stock"`
	Active      bool              `json:"active"`
	Archived    bool              `json:"archived"`
	Images      []string          `json:"images"`
	Tags        []string          `json:"tags"`
	Variants    []VariantResponse `json:"variants"`
	Sold        int64             `json:"sold"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func ToProductResponse(p *models.Product, sold map[uuid.UUID]int64) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		Currency:    p.Currency,
		Stock:       p.Stock,
		Active:      p.Active,
		Archived:    p.Archived,
		Images:      make([]string, 0, len(p.Images)),
		Tags:        make([]string, 0, len(p.Tags)),
		Variants:    make([]VariantResponse, 0, len(p.Variants)),
		Sold:        sold[p.ID],
		CreatedAt:   p.CreatedAt,
	}
	for _, img := range p.Images {
		resp.Images = append(resp.Images, img.URL)
	}
	for _, t := range p.Tags {
		resp.Tags = append(resp.Tags, t.Name)
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:        v.ID.String(),
			Name:      v.Name,
			Stock:     v.Stock,
			SortOrder: v.SortOrder,
		})
	}
	return resp
}

func ToProductResponses(products []*models.Product, sold map[uuid.UUID]int64) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p, sold))
	}
	return out
}

type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

type TagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func ToTagResponses(tags []*models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID.String(), Name: t.Name})
	}
	return out
}

type PromoCodeRequest struct {
	Code                string `json:"code" binding:"required"`
	DiscountPercent     int    `json:"discountPercent" binding:"gte=0,lte=100"`
	DiscountAmountMinor int64  `json:"discountAmountMinor" binding:"gte=0"`
	MaxUses             *int   `json:"maxUses"`
	Active              bool   `json:"active"`
}

type PromoCodeResponse struct {
	ID                  string `json:"id"`
	Code                string `json:"code"`
	DiscountPercent     int    `json:"discountPercent"`
	DiscountAmountMinor int64  `json:"discountAmountMinor"`
	MaxUses             *int   `json:"maxUses"`
	UsesCount           int    `json:"usesCount"`
	Active              bool   `json:"active"`
}

func ToPromoCodeResponse(p *models.PromoCode) PromoCodeResponse {
	return PromoCodeResponse{
		ID:                  p.ID.String(),
		Code:                p.Code,
		DiscountPercent:     p.DiscountPercent,
		DiscountAmountMinor: p.DiscountAmountMinor,
		MaxUses:             p.MaxUses,
		UsesCount:           p.UsesCount,
		Active:              p.Active,
	}
}

type PaymentTemplateRequest struct {
	HTML string `json:"html" binding:"required"`
}

type PaymentTemplateResponse struct {
	HTML string `json:"html"`
}
