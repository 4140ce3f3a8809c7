package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wanderlust/listings-service/internal/app/listings/access"
	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/infrastructure"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const publishTimeout = 3 * time.Second

// CatalogService выполняет сценарии каталога от имени актора
// Порядок проверок: аутентификация, поиск ресурса (NotFound), права (Forbidden)
type CatalogService struct {
	listings  *ListingStore
	reviews   *ReviewStore
	publisher infrastructure.MessagePublisher
}

// NewCatalogService создает сервис каталога
func NewCatalogService(listings *ListingStore, reviews *ReviewStore, publisher infrastructure.MessagePublisher) *CatalogService {
	return &CatalogService{
		listings:  listings,
		reviews:   reviews,
		publisher: publisher,
	}
}

// CreateListing - любой аутентифицированный актор, он же становится владельцем
func (s *CatalogService) CreateListing(ctx context.Context, actor *access.Actor, req *entity.CreateListingRequest) (*entity.Listing, error) {
	if !authenticated(actor) {
		return nil, ErrUnauthenticated
	}

	listing, err := s.listings.Create(ctx, req, actor.ID)
	if err != nil {
		return nil, err
	}

	metrics.ListingsCreated.Inc()
	s.publish(ctx, entity.ListingEvent{
		EventType: entity.EventListingCreated,
		ListingID: listing.ID.Hex(),
		ActorID:   actor.ID,
		Category:  listing.Category,
	})

	return listing, nil
}

// GetListing - публичное чтение с раскрытыми ссылками
func (s *CatalogService) GetListing(ctx context.Context, id string) (*entity.ListingDetails, error) {
	return s.listings.Get(ctx, id)
}

// UpdateListing - только владелец
func (s *CatalogService) UpdateListing(ctx context.Context, actor *access.Actor, id string, req *entity.UpdateListingRequest) (*entity.Listing, error) {
	if !authenticated(actor) {
		return nil, ErrUnauthenticated
	}

	current, err := s.listings.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(actor, current) {
		return nil, ErrForbidden
	}

	listing, err := s.listings.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entity.ListingEvent{
		EventType: entity.EventListingUpdated,
		ListingID: listing.ID.Hex(),
		ActorID:   actor.ID,
		Category:  listing.Category,
	})

	return listing, nil
}

// DeleteListing - только владелец, удаляет объявление вместе с отзывами
func (s *CatalogService) DeleteListing(ctx context.Context, actor *access.Actor, id string) error {
	if !authenticated(actor) {
		return ErrUnauthenticated
	}

	current, err := s.listings.Find(ctx, id)
	if err != nil {
		return err
	}
	if !access.IsOwner(actor, current) {
		return ErrForbidden
	}

	deleted, err := s.listings.Delete(ctx, id)
	if err != nil {
		return err
	}

	metrics.ListingsDeleted.Inc()
	s.publish(ctx, entity.ListingEvent{
		EventType: entity.EventListingDeleted,
		ListingID: deleted.ID.Hex(),
		ActorID:   actor.ID,
		Category:  deleted.Category,
	})

	return nil
}

// ListListings - все объявления
func (s *CatalogService) ListListings(ctx context.Context) ([]entity.Listing, error) {
	return s.listings.ListAll(ctx)
}

// ListByCategory - фильтр по категории
func (s *CatalogService) ListByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error) {
	return s.listings.ListByCategory(ctx, category)
}

// SearchByTitle - поиск по заголовку
func (s *CatalogService) SearchByTitle(ctx context.Context, title string) ([]entity.Listing, error) {
	return s.listings.SearchByTitle(ctx, title)
}

// CreateReview - любой аутентифицированный актор, он же становится автором
func (s *CatalogService) CreateReview(ctx context.Context, actor *access.Actor, listingID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	if !authenticated(actor) {
		return nil, ErrUnauthenticated
	}

	review, err := s.reviews.Create(ctx, listingID, req, actor.ID)
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))
	s.publish(ctx, entity.ListingEvent{
		EventType: entity.EventReviewCreated,
		ListingID: review.ListingID.Hex(),
		ReviewID:  review.ID.Hex(),
		ActorID:   actor.ID,
		Rating:    review.Rating,
	})

	return review, nil
}

// DeleteReview - только автор отзыва
// Отзыв другого объявления считается ненайденным
func (s *CatalogService) DeleteReview(ctx context.Context, actor *access.Actor, listingID, reviewID string) error {
	if !authenticated(actor) {
		return ErrUnauthenticated
	}

	review, err := s.reviews.Find(ctx, reviewID)
	if err != nil {
		return err
	}
	parentID, err := primitive.ObjectIDFromHex(listingID)
	if err != nil || review.ListingID != parentID {
		return ErrReviewNotFound
	}
	if !access.IsAuthor(actor, review) {
		return ErrForbidden
	}

	if err := s.reviews.Delete(ctx, listingID, reviewID); err != nil {
		return err
	}

	metrics.ReviewsDeleted.Inc()
	s.publish(ctx, entity.ListingEvent{
		EventType: entity.EventReviewDeleted,
		ListingID: parentID.Hex(),
		ReviewID:  review.ID.Hex(),
		ActorID:   actor.ID,
	})

	return nil
}

// SweepOrphans запускается планировщиком
func (s *CatalogService) SweepOrphans(ctx context.Context) (int64, error) {
	return s.reviews.SweepOrphans(ctx)
}

// publish отправляет событие в Kafka
// Ошибка только логируется: запись в хранилище уже выполнена
func (s *CatalogService) publish(ctx context.Context, event entity.ListingEvent) {
	if s.publisher == nil {
		return
	}

	event.Timestamp = time.Now().UTC()

	// Недоступная Kafka не должна задерживать ответ дольше publishTimeout
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publishEvent(publishCtx, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("listing_id", event.ListingID).
			Msg("Failed to publish listing event")
	}
}

func (s *CatalogService) publishEvent(ctx context.Context, event entity.ListingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return s.publisher.PublishMessage(ctx, event.ListingID, data)
}

func authenticated(actor *access.Actor) bool {
	return actor != nil && actor.ID != ""
}
