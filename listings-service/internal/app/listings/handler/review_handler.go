package handler

import (
	"net/http"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	catalog service.CatalogServiceInterface
}

func NewReviewHandler(catalog service.CatalogServiceInterface) *ReviewHandler {
	return &ReviewHandler{catalog: catalog}
}

// CreateReview - POST /listings/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.catalog.CreateReview(c.Request.Context(), actorFromContext(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// DeleteReview - DELETE /listings/:id/reviews/:review_id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	err := h.catalog.DeleteReview(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("review_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Review deleted"})
}
