package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listingsCollection = "listings"

// titleCollation - сравнение без учета регистра (strength 2 игнорирует только регистр)
var titleCollation = &options.Collation{Locale: "en", Strength: 2}

type listingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository создает репозиторий объявлений
// Автоматически создает индексы по category и title
func NewListingRepository(db *mongo.Database) ListingRepository {
	collection := db.Collection(listingsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			// Тот же collation, что и в FindByTitle, иначе индекс не используется
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetName("title_ci_idx").SetCollation(titleCollation),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", listingsCollection).Msg("Failed to create indexes")
	}

	return newListingRepository(collection)
}

func newListingRepository(collection *mongo.Collection) *listingRepository {
	return &listingRepository{collection: collection}
}

// Create сохраняет новое объявление и проставляет ID
func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, listingsCollection)
	result, err := r.collection.InsertOne(ctx, listing)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid
	}

	return nil
}

// GetByID получает объявление по ID
func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, listingsCollection)
	var listing entity.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrListingNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	timer.Done(nil)

	return &listing, nil
}

// Exists проверяет наличие объявления без загрузки документа
func (r *listingRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check listing existence: %w", err)
	}
	return count > 0, nil
}

// GetAll возвращает все объявления
func (r *listingRepository) GetAll(ctx context.Context) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{})
}

// FindByCategory возвращает объявления с точным совпадением категории
func (r *listingRepository) FindByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{"category": category})
}

// FindByTitle ищет объявления, заголовок которых совпадает целиком без учета регистра
func (r *listingRepository) FindByTitle(ctx context.Context, title string) ([]entity.Listing, error) {
	return r.find(ctx, bson.M{"title": title}, options.Find().SetCollation(titleCollation))
}

func (r *listingRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]entity.Listing, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, listingsCollection)
	cursor, err := r.collection.Find(ctx, filter, opts...)
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []entity.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	return listings, nil
}

// Update сохраняет изменяемые поля объявления
// owner и reviews здесь не трогаются
func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"title":       listing.Title,
			"description": listing.Description,
			"price":       listing.Price,
			"location":    listing.Location,
			"country":     listing.Country,
			"category":    listing.Category,
			"image":       listing.Image,
			"geometry":    listing.Geometry,
			"updated_at":  listing.UpdatedAt,
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, listingsCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": listing.ID}, update)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

// Delete атомарно удаляет объявление и возвращает удаленный документ
// Возвращенный список reviews нужен для каскадного удаления
func (r *listingRepository) Delete(ctx context.Context, id string) (*entity.Listing, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, listingsCollection)
	var listing entity.Listing
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrListingNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to delete listing: %w", err)
	}
	timer.Done(nil)

	return &listing, nil
}

// AppendReview добавляет ссылку на отзыв в конец списка
// Если объявления уже нет, возвращает ErrListingNotFound
func (r *listingRepository) AppendReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	update := bson.M{
		"$push": bson.M{"reviews": reviewID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("failed to append review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

// RemoveReview убирает ссылку на отзыв; повторный вызов ничего не меняет
func (r *listingRepository) RemoveReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"reviews": reviewID}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrListingNotFound
	}

	return nil
}

// ExistingIDs возвращает подмножество ids, для которых объявление существует
func (r *listingRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing ids: %w", err)
	}

	existing := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		existing = append(existing, d.ID)
	}

	return existing, nil
}
