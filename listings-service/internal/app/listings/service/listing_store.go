package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/geo"
	"wanderlust/listings-service/internal/app/listings/repository"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStore - жизненный цикл объявлений
// Не проверяет права: это делает CatalogService
type ListingStore struct {
	listings repository.ListingRepository
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	cascade  reviewCascader
	enricher LocationEnricher
	validate *validator.Validate
}

// NewListingStore создает хранилище объявлений
// users может быть nil: тогда профили владельцев и авторов не подставляются
func NewListingStore(
	listings repository.ListingRepository,
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	cascade reviewCascader,
	enricher LocationEnricher,
) *ListingStore {
	return &ListingStore{
		listings: listings,
		reviews:  reviews,
		users:    users,
		cascade:  cascade,
		enricher: enricher,
		validate: newValidator(),
	}
}

// Create проверяет атрибуты, геокодирует адрес и сохраняет объявление
// Поле Owner из запроса игнорируется
func (s *ListingStore) Create(ctx context.Context, req *entity.CreateListingRequest, ownerID string) (*entity.Listing, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	coords, resolved := s.resolveLocation(ctx, req.Location)

	listing := &entity.Listing{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    resolved,
		Country:     req.Country,
		Category:    req.Category,
		Image:       req.Image,
		Geometry:    entity.NewPoint(coords),
		OwnerID:     ownerID,
		Reviews:     []primitive.ObjectID{},
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return listing, nil
}

// Find загружает объявление без раскрытия ссылок
func (s *ListingStore) Find(ctx context.Context, id string) (*entity.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, mapListingError(err)
	}
	return listing, nil
}

// Get возвращает объявление с отзывами (в порядке создания), авторами и владельцем
func (s *ListingStore) Get(ctx context.Context, id string) (*entity.ListingDetails, error) {
	listing, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.GetByIDs(ctx, listing.Reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	byID := make(map[primitive.ObjectID]entity.Review, len(reviews))
	userIDs := []string{listing.OwnerID}
	for _, r := range reviews {
		byID[r.ID] = r
		userIDs = append(userIDs, r.AuthorID)
	}

	profiles := s.lookupProfiles(ctx, userIDs)

	details := &entity.ListingDetails{
		Listing: *listing,
		Owner:   profileOrNil(profiles, listing.OwnerID),
		Reviews: make([]entity.ReviewWithAuthor, 0, len(listing.Reviews)),
	}

	for _, reviewID := range listing.Reviews {
		r, ok := byID[reviewID]
		if !ok {
			continue
		}
		details.Reviews = append(details.Reviews, entity.ReviewWithAuthor{
			Review: r,
			Author: profileOrNil(profiles, r.AuthorID),
		})
	}

	return details, nil
}

// Update применяет частичные изменения
// Геокодирование повторяется только при смене адреса, владелец не меняется никогда
func (s *ListingStore) Update(ctx context.Context, id string, req *entity.UpdateListingRequest) (*entity.Listing, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	listing, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		listing.Price = req.Price
	}
	if req.Country != nil {
		listing.Country = *req.Country
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.Image != nil {
		listing.Image = req.Image
	}
	if req.Location != nil && *req.Location != listing.Location {
		coords, resolved := s.resolveLocation(ctx, *req.Location)
		listing.Location = resolved
		listing.Geometry = entity.NewPoint(coords)
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, mapListingError(err)
	}

	return listing, nil
}

// Delete удаляет объявление, затем все его отзывы
// Сбой каскада не откатывает удаление: оставшиеся отзывы подберет SweepOrphans
func (s *ListingStore) Delete(ctx context.Context, id string) (*entity.Listing, error) {
	deleted, err := s.listings.Delete(ctx, id)
	if err != nil {
		return nil, mapListingError(err)
	}

	if s.cascade != nil {
		count, err := s.cascade.DeleteForListing(ctx, deleted)
		if err != nil {
			logger.Error().
				Err(err).
				Str("listing_id", deleted.ID.Hex()).
				Msg("Failed to delete listing reviews, leaving them for the orphan sweep")
		} else {
			metrics.CascadeDeletedReviews.Add(float64(count))
		}
	}

	return deleted, nil
}

// ListAll возвращает все объявления
func (s *ListingStore) ListAll(ctx context.Context) ([]entity.Listing, error) {
	listings, err := s.listings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// ListByCategory - точное совпадение категории
// Значение вне набора не считается ошибкой и дает пустой результат
func (s *ListingStore) ListByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error) {
	if !category.Valid() {
		return []entity.Listing{}, nil
	}

	listings, err := s.listings.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to filter listings: %w", err)
	}
	return listings, nil
}

// SearchByTitle - совпадение заголовка целиком без учета регистра, не подстрока
func (s *ListingStore) SearchByTitle(ctx context.Context, title string) ([]entity.Listing, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return []entity.Listing{}, nil
	}

	listings, err := s.listings.FindByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, nil
}

func (s *ListingStore) resolveLocation(ctx context.Context, location string) (entity.Coordinates, string) {
	if strings.TrimSpace(location) == "" || s.enricher == nil {
		return geo.FallbackCoordinates, location
	}
	return s.enricher.Enrich(ctx, location)
}

// lookupProfiles не возвращает ошибку: без справочника профили просто будут null
func (s *ListingStore) lookupProfiles(ctx context.Context, ids []string) map[string]entity.UserProfile {
	if s.users == nil {
		return nil
	}

	profiles, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to resolve user profiles")
		return nil
	}
	return profiles
}

func profileOrNil(profiles map[string]entity.UserProfile, id string) *entity.UserProfile {
	p, ok := profiles[id]
	if !ok {
		return nil
	}
	return &p
}

func mapListingError(err error) error {
	if errors.Is(err, repository.ErrListingNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return ErrListingNotFound
	}
	return fmt.Errorf("failed to access listing: %w", err)
}
