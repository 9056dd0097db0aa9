package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vladbogun1/tg-shop-miniapp/internal/cache"
	"github.com/vladbogun1/tg-shop-miniapp/internal/dto"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	cache   *cache.RedisCache // nil, если Redis выключен
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, c *cache.RedisCache, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, cache: c, log: log}
}

// ListProducts godoc
// @Summary Активные товары витрины
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.ProductResponse
// @Router /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if raw, found, err := h.cache.Get(ctx, cache.ProductsKey); err == nil && found {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
			return
		} else if err != nil {
			h.log.Warn("Ошибка чтения кэша каталога", zap.Error(err))
		}
	}

	products, err := h.catalog.ListProducts(ctx, true)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	resp := dto.ToProductResponses(products, h.soldCounts(c))

	if h.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(ctx, cache.ProductsKey, string(raw)); err != nil {
				h.log.Warn("Ошибка записи кэша каталога", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListTags godoc
// @Summary Список тегов каталога
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.TagResponse
// @Router /api/tags [get]
func (h *CatalogHandler) ListTags(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if raw, found, err := h.cache.Get(ctx, cache.TagsKey); err == nil && found {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
			return
		}
	}

	tags, err := h.catalog.ListTags(ctx)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	resp := dto.ToTagResponses(tags)

	if h.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			_ = h.cache.Set(ctx, cache.TagsKey, string(raw))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// soldCounts подмешивает счётчики продаж в карточки; ошибка не валит выдачу.
func (h *CatalogHandler) soldCounts(c *gin.Context) map[uuid.UUID]int64 {
	sold, err := h.catalog.SoldCounts(c.Request.Context())
	if err != nil {
		h.log.Warn("Ошибка загрузки счётчиков продаж", zap.Error(err))
		return nil
	}
	return sold
}

// --- админка каталога ---

// AdminListProducts возвращает все неархивные товары, включая скрытые.
func (h *CatalogHandler) AdminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), false)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponses(products, h.soldCounts(c)))
}

func (h *CatalogHandler) AdminListArchivedProducts(c *gin.Context) {
	products, err := h.catalog.ListArchivedProducts(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponses(products, h.soldCounts(c)))
}

func (h *CatalogHandler) AdminGetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p, h.soldCounts(c)))
}

func (h *CatalogHandler) AdminCreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), productInput(req))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	h.log.Info("Товар создан", zap.String("productId", p.ID.String()), zap.String("title", p.Title))
	c.JSON(http.StatusCreated, dto.ToProductResponse(p, nil))
}

func (h *CatalogHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, productInput(req))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(p, h.soldCounts(c)))
}

type activePatch struct {
	Active bool `json:"active"`
}

func (h *CatalogHandler) AdminSetProductActive(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req activePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.catalog.SetProductActive(c.Request.Context(), id, req.Active); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type archivedPatch struct {
	Archived bool `json:"archived"`
}

func (h *CatalogHandler) AdminSetProductArchived(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req archivedPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.catalog.SetProductArchived(c.Request.Context(), id, req.Archived); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AdminCreateTag(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	t, err := h.catalog.CreateTag(c.Request.Context(), req.Name)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TagResponse{ID: t.ID.String(), Name: t.Name})
}

func (h *CatalogHandler) AdminRenameTag(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.catalog.RenameTag(c.Request.Context(), id, req.Name); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AdminDeleteTag(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteTag(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AdminListPromoCodes(c *gin.Context) {
	promos, err := h.catalog.ListPromoCodes(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	out := make([]dto.PromoCodeResponse, 0, len(promos))
	for _, p := range promos {
		out = append(out, dto.ToPromoCodeResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) AdminCreatePromoCode(c *gin.Context) {
	var req dto.PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	p, err := h.catalog.CreatePromoCode(c.Request.Context(), promoInput(req))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToPromoCodeResponse(p))
}

func (h *CatalogHandler) AdminUpdatePromoCode(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	p, err := h.catalog.UpdatePromoCode(c.Request.Context(), id, promoInput(req))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPromoCodeResponse(p))
}

func (h *CatalogHandler) AdminDeletePromoCode(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeletePromoCode(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AdminGetPaymentTemplate(c *gin.Context) {
	html, err := h.catalog.GetPaymentTemplate(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentTemplateResponse{HTML: html})
}

func (h *CatalogHandler) AdminSetPaymentTemplate(c *gin.Context) {
	var req dto.PaymentTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.catalog.SetPaymentTemplate(c.Request.Context(), req.HTML); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func productInput(req dto.ProductRequest) service.ProductInput {
	in := service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		PriceMinor:  req.PriceMinor,
		Stock:       req.Stock,
		Active:      req.Active,
		Images:      req.Images,
		TagNames:    req.Tags,
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, service.VariantInput{
			Name:      v.Name,
			Stock:     v.Stock,
			SortOrder: v.SortOrder,
		})
	}
	return in
}

func promoInput(req dto.PromoCodeRequest) service.PromoInput {
	return service.PromoInput{
		Code:                req.Code,
		DiscountPercent:     req.DiscountPercent,
		DiscountAmountMinor: req.DiscountAmountMinor,
		MaxUses:             req.MaxUses,
		Active:              req.Active,
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid "+name, nil))
		return uuid.Nil, false
	}
	return id, true
}
