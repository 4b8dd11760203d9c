package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/interfaces/http/dto"
)

// ProductCounter counts the products of a shop
type ProductCounter interface {
	CountProducts(ctx context.Context, session integration.Session) (int, error)
}

// ProductHandler serves the shop's product endpoints
type ProductHandler struct {
	BaseHandler
	products ProductCounter
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductCounter) *ProductHandler {
	return &ProductHandler{products: products}
}

// Count godoc
// @ID           countProducts
// @Summary      Count shop products
// @Description  Returns the number of products in the shop. The body is the bare count object the embedded app reads.
// @Tags         products
// @Produce      json
// @Param        X-Shopify-Shop-Domain   header  string  false  "Shop domain"
// @Param        X-Shopify-Access-Token  header  string  false  "Admin API access token"
// @Success      200 {object} dto.CountResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/products-count [get]
func (h *ProductHandler) Count(c *gin.Context) {
	session, ok := h.requireSession(c)
	if !ok {
		return
	}

	count, err := h.products.CountProducts(c.Request.Context(), session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}
