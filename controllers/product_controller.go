package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/services"
	"go.uber.org/zap"
)

type ProductController struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

func NewProductController(catalog *services.CatalogService, logger *zap.Logger) *ProductController {
	return &ProductController{catalog: catalog, logger: logger}
}

func priceQuery(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperror.NewValidation(name, "Price filter must be a non-negative number")
	}
	return &v, nil
}

func filterFromQuery(c *gin.Context) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Search:   c.Query("search"),
		Category: models.Category(c.Query("category")),
		Sort:     models.ProductSort(c.DefaultQuery("sort", string(models.SortLatest))),
	}
	var err error
	if filter.MinPrice, err = priceQuery(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceQuery(c, "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *ProductController) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.catalog.List(ctx, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, products)
}

func (h *ProductController) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, product)
}

func (h *ProductController) Create(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.catalog.Create(ctx, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, product)
}

func (h *ProductController) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.catalog.Update(ctx, id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, product)
}

func (h *ProductController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.Delete(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, "Product removed")
}
