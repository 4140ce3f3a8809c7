package service

import (
	"context"

	"wanderlust/listings-service/internal/app/listings/access"
	"wanderlust/listings-service/internal/app/listings/entity"
)

// LocationEnricher - геокодирование адреса с гарантированным результатом
type LocationEnricher interface {
	Enrich(ctx context.Context, location string) (entity.Coordinates, string)
}

// reviewCascader удаляет отзывы удаленного объявления
type reviewCascader interface {
	DeleteForListing(ctx context.Context, listing *entity.Listing) (int64, error)
}

// CatalogServiceInterface - операции каталога, доступные обработчикам HTTP
type CatalogServiceInterface interface {
	CreateListing(ctx context.Context, actor *access.Actor, req *entity.CreateListingRequest) (*entity.Listing, error)
	GetListing(ctx context.Context, id string) (*entity.ListingDetails, error)
	UpdateListing(ctx context.Context, actor *access.Actor, id string, req *entity.UpdateListingRequest) (*entity.Listing, error)
	DeleteListing(ctx context.Context, actor *access.Actor, id string) error
	ListListings(ctx context.Context) ([]entity.Listing, error)
	ListByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error)
	SearchByTitle(ctx context.Context, title string) ([]entity.Listing, error)
	CreateReview(ctx context.Context, actor *access.Actor, listingID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, actor *access.Actor, listingID, reviewID string) error
}
