package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/repository"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewStore - жизненный цикл отзывов и их связь с объявлением
//
// Хранилище не дает многодокументных транзакций, поэтому создание идет в два шага:
// сначала отзыв с обратной ссылкой listing_id, затем $push в объявление.
// Если объявление исчезло между шагами, отзыв удаляется компенсирующим действием.
// Каскад объявления удаляет отзывы и по списку, и по listing_id, так что
// отзыв, еще не попавший в список, тоже будет найден.
type ReviewStore struct {
	listings repository.ListingRepository
	reviews  repository.ReviewRepository
	validate *validator.Validate
}

// NewReviewStore создает хранилище отзывов
func NewReviewStore(listings repository.ListingRepository, reviews repository.ReviewRepository) *ReviewStore {
	return &ReviewStore{
		listings: listings,
		reviews:  reviews,
		validate: newValidator(),
	}
}

// Create создает отзыв и добавляет его в конец списка объявления
func (s *ReviewStore) Create(ctx context.Context, listingID string, req *entity.CreateReviewRequest, authorID string) (*entity.Review, error) {
	req.Body = strings.TrimSpace(req.Body)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	parentID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}

	exists, err := s.listings.Exists(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check listing: %w", err)
	}
	if !exists {
		return nil, ErrListingNotFound
	}

	review := &entity.Review{
		ListingID: parentID,
		Body:      req.Body,
		Rating:    req.Rating,
		AuthorID:  authorID,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.listings.AppendReview(ctx, parentID, review.ID); err != nil {
		s.compensate(ctx, review)
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to link review: %w", err)
	}

	return review, nil
}

// compensate удаляет отзыв, который не удалось привязать к объявлению
func (s *ReviewStore) compensate(ctx context.Context, review *entity.Review) {
	err := s.reviews.Delete(ctx, review.ID)
	if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
		metrics.ReviewCompensations.WithLabelValues("failed").Inc()
		logger.Error().
			Err(err).
			Str("review_id", review.ID.Hex()).
			Str("listing_id", review.ListingID.Hex()).
			Msg("Failed to remove unlinked review, leaving it for the orphan sweep")
		return
	}

	metrics.ReviewCompensations.WithLabelValues("success").Inc()
	logger.Warn().
		Str("review_id", review.ID.Hex()).
		Str("listing_id", review.ListingID.Hex()).
		Msg("Listing disappeared while adding review, review removed")
}

// Find загружает отзыв по ID
func (s *ReviewStore) Find(ctx context.Context, id string) (*entity.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// Delete убирает ссылку из объявления и удаляет сам отзыв
// Снятие ссылки идемпотентно, NotFound возвращается только если отзыва нет вовсе
func (s *ReviewStore) Delete(ctx context.Context, listingID, reviewID string) error {
	rid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return ErrReviewNotFound
	}

	if lid, err := primitive.ObjectIDFromHex(listingID); err == nil {
		err = s.listings.RemoveReview(ctx, lid, rid)
		if err != nil && !errors.Is(err, repository.ErrListingNotFound) {
			return fmt.Errorf("failed to unlink review: %w", err)
		}
	}

	if err := s.reviews.Delete(ctx, rid); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// DeleteForListing - каскадное удаление отзывов уже удаленного объявления
func (s *ReviewStore) DeleteForListing(ctx context.Context, listing *entity.Listing) (int64, error) {
	count, err := s.reviews.DeleteForListing(ctx, listing.ID, listing.Reviews)
	if err != nil {
		return 0, fmt.Errorf("failed to cascade delete reviews: %w", err)
	}
	return count, nil
}

// SweepOrphans удаляет отзывы, чье объявление больше не существует
// Закрывает случай падения процесса между шагами Create или каскада
func (s *ReviewStore) SweepOrphans(ctx context.Context) (int64, error) {
	referenced, err := s.reviews.ListingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to collect review listing ids: %w", err)
	}
	if len(referenced) == 0 {
		return 0, nil
	}

	existing, err := s.listings.ExistingIDs(ctx, referenced)
	if err != nil {
		return 0, fmt.Errorf("failed to check listings: %w", err)
	}

	alive := make(map[primitive.ObjectID]struct{}, len(existing))
	for _, id := range existing {
		alive[id] = struct{}{}
	}

	var orphaned []primitive.ObjectID
	for _, id := range referenced {
		if _, ok := alive[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	count, err := s.reviews.DeleteByListingIDs(ctx, orphaned)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned reviews: %w", err)
	}

	metrics.OrphanReviewsSwept.Add(float64(count))
	logger.Info().
		Int("listings", len(orphaned)).
		Int64("reviews", count).
		Msg("Orphaned reviews removed")

	return count, nil
}
