package repository

import (
	"context"
	"errors"

	"wanderlust/listings-service/internal/app/listings/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const serviceName = "listings-service"

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrListingNotFound = errors.New("listing not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidID       = errors.New("invalid object id")
)

// ListingRepository определяет методы для работы с объявлениями в MongoDB
// Поле reviews меняется только через AppendReview/RemoveReview
type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	GetAll(ctx context.Context) ([]entity.Listing, error)
	FindByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error)
	FindByTitle(ctx context.Context, title string) ([]entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id string) (*entity.Listing, error)
	AppendReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	RemoveReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteForListing(ctx context.Context, listingID primitive.ObjectID, reviewIDs []primitive.ObjectID) (int64, error)
	ListingIDs(ctx context.Context) ([]primitive.ObjectID, error)
	DeleteByListingIDs(ctx context.Context, listingIDs []primitive.ObjectID) (int64, error)
}

// UserRepository - справочник пользователей провайдера идентификации
// Отсутствующие ID просто не попадают в результат
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]entity.UserProfile, error)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
