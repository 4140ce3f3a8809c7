package handler

import (
	"net/http"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	catalog service.CatalogServiceInterface
}

func NewListingHandler(catalog service.CatalogServiceInterface) *ListingHandler {
	return &ListingHandler{catalog: catalog}
}

// ListListings - GET /listings[?category=..|?title=..]
// category имеет приоритет над title
func (h *ListingHandler) ListListings(c *gin.Context) {
	var (
		listings []entity.Listing
		err      error
	)

	if category, ok := c.GetQuery("category"); ok {
		listings, err = h.catalog.ListByCategory(c.Request.Context(), entity.Category(category))
	} else if title, ok := c.GetQuery("title"); ok {
		listings, err = h.catalog.SearchByTitle(c.Request.Context(), title)
	} else {
		listings, err = h.catalog.ListListings(c.Request.Context())
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ListingListResponse{
		Listings: listings,
		Total:    len(listings),
	})
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	details, err := h.catalog.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req entity.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.catalog.CreateListing(c.Request.Context(), actorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	var req entity.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.catalog.UpdateListing(c.Request.Context(), actorFromContext(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.catalog.DeleteListing(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Listing deleted"})
}

// ListCategories - фиксированный набор категорий для фильтра
func (h *ListingHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, entity.CategoryListResponse{Categories: entity.Categories})
}
