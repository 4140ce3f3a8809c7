package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/listings-service/internal/app/listings/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB - хранилище в памяти с атомарностью на уровне одного документа,
// как у MongoDB; используется в тестах свойств
type memDB struct {
	mu       sync.Mutex
	listings map[primitive.ObjectID]entity.Listing
	reviews  map[primitive.ObjectID]entity.Review
}

func newMemDB() *memDB {
	return &memDB{
		listings: make(map[primitive.ObjectID]entity.Listing),
		reviews:  make(map[primitive.ObjectID]entity.Review),
	}
}

type memListingRepo struct{ db *memDB }

type memReviewRepo struct{ db *memDB }

func copyListing(l entity.Listing) entity.Listing {
	l.Reviews = append([]primitive.ObjectID{}, l.Reviews...)
	return l
}

func (r *memListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	listing.ID = primitive.NewObjectID()
	listing.CreatedAt = time.Now()
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}
	r.db.listings[listing.ID] = copyListing(*listing)
	return nil
}

func (r *memListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.listings[oid]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	l = copyListing(l)
	return &l, nil
}

func (r *memListingRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.listings[id]
	return ok, nil
}

func (r *memListingRepo) filter(match func(entity.Listing) bool) []entity.Listing {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []entity.Listing{}
	for _, l := range r.db.listings {
		if match(l) {
			result = append(result, copyListing(l))
		}
	}
	return result
}

func (r *memListingRepo) GetAll(ctx context.Context) ([]entity.Listing, error) {
	return r.filter(func(entity.Listing) bool { return true }), nil
}

func (r *memListingRepo) FindByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool { return l.Category == category }), nil
}

func (r *memListingRepo) FindByTitle(ctx context.Context, title string) ([]entity.Listing, error) {
	return r.filter(func(l entity.Listing) bool { return strings.EqualFold(l.Title, title) }), nil
}

func (r *memListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.listings[listing.ID]
	if !ok {
		return repository.ErrListingNotFound
	}
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.Price = listing.Price
	stored.Location = listing.Location
	stored.Country = listing.Country
	stored.Category = listing.Category
	stored.Image = listing.Image
	stored.Geometry = listing.Geometry
	r.db.listings[listing.ID] = stored
	return nil
}

func (r *memListingRepo) Delete(ctx context.Context, id string) (*entity.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.listings[oid]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	delete(r.db.listings, oid)
	return &l, nil
}

func (r *memListingRepo) AppendReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.listings[listingID]
	if !ok {
		return repository.ErrListingNotFound
	}
	l.Reviews = append(l.Reviews, reviewID)
	r.db.listings[listingID] = l
	return nil
}

func (r *memListingRepo) RemoveReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.listings[listingID]
	if !ok {
		return repository.ErrListingNotFound
	}
	kept := l.Reviews[:0:0]
	for _, id := range l.Reviews {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	l.Reviews = kept
	r.db.listings[listingID] = l
	return nil
}

func (r *memListingRepo) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []primitive.ObjectID{}
	for _, id := range ids {
		if _, ok := r.db.listings[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

func (r *memReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	r.db.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rv, ok := r.db.reviews[oid]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	return &rv, nil
}

func (r *memReviewRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	result := []entity.Review{}
	// обратный порядок, чтобы проверить сортировку на стороне сервиса
	for i := len(ids) - 1; i >= 0; i-- {
		if rv, ok := r.db.reviews[ids[i]]; ok {
			result = append(result, rv)
		}
	}
	return result, nil
}

func (r *memReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(r.db.reviews, id)
	return nil
}

func (r *memReviewRepo) DeleteForListing(ctx context.Context, listingID primitive.ObjectID, reviewIDs []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := make(map[primitive.ObjectID]struct{}, len(reviewIDs))
	for _, id := range reviewIDs {
		wanted[id] = struct{}{}
	}
	var count int64
	for id, rv := range r.db.reviews {
		_, listed := wanted[id]
		if listed || rv.ListingID == listingID {
			delete(r.db.reviews, id)
			count++
		}
	}
	return count, nil
}

func (r *memReviewRepo) ListingIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	seen := make(map[primitive.ObjectID]struct{})
	result := []primitive.ObjectID{}
	for _, rv := range r.db.reviews {
		if _, ok := seen[rv.ListingID]; !ok {
			seen[rv.ListingID] = struct{}{}
			result = append(result, rv.ListingID)
		}
	}
	return result, nil
}

func (r *memReviewRepo) DeleteByListingIDs(ctx context.Context, listingIDs []primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := make(map[primitive.ObjectID]struct{}, len(listingIDs))
	for _, id := range listingIDs {
		wanted[id] = struct{}{}
	}
	var count int64
	for id, rv := range r.db.reviews {
		if _, ok := wanted[rv.ListingID]; ok {
			delete(r.db.reviews, id)
			count++
		}
	}
	return count, nil
}

// reviewsOf возвращает все отзывы, ссылающиеся на объявление
func (db *memDB) reviewsOf(listingID primitive.ObjectID) []entity.Review {
	db.mu.Lock()
	defer db.mu.Unlock()
	var result []entity.Review
	for _, rv := range db.reviews {
		if rv.ListingID == listingID {
			result = append(result, rv)
		}
	}
	return result
}

// orphans возвращает отзывы, чьего объявления нет
func (db *memDB) orphans() []entity.Review {
	db.mu.Lock()
	defer db.mu.Unlock()
	var result []entity.Review
	for _, rv := range db.reviews {
		if _, ok := db.listings[rv.ListingID]; !ok {
			result = append(result, rv)
		}
	}
	return result
}

// stubEnricher возвращает фиксированный результат и считает вызовы
type stubEnricher struct {
	mu       sync.Mutex
	coords   entity.Coordinates
	resolved string
	calls    []string
}

func (e *stubEnricher) Enrich(ctx context.Context, location string) (entity.Coordinates, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, location)
	if e.resolved == "" {
		return e.coords, location
	}
	return e.coords, e.resolved
}

// newMemCatalog собирает сервис каталога поверх хранилища в памяти
func newMemCatalog(enricher LocationEnricher) (*CatalogService, *memDB) {
	db := newMemDB()
	listings := &memListingRepo{db: db}
	reviews := &memReviewRepo{db: db}
	reviewStore := NewReviewStore(listings, reviews)
	listingStore := NewListingStore(listings, reviews, nil, reviewStore, enricher)
	return NewCatalogService(listingStore, reviewStore, nil), db
}
