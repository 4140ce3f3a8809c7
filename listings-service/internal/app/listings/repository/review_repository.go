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

const reviewsCollection = "reviews"

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов
// Индекс по listing_id нужен каскадному удалению и сверке
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection(reviewsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "listing_id", Value: 1}},
			Options: options.Index().SetName("listing_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "author", Value: 1}},
			Options: options.Index().SetName("author_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", reviewsCollection).Msg("Failed to create indexes")
	}

	return newReviewRepository(collection)
}

func newReviewRepository(collection *mongo.Collection) *reviewRepository {
	return &reviewRepository{collection: collection}
}

// Create сохраняет отзыв и проставляет ID
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now().UTC()

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsCollection)
	result, err := r.collection.InsertOne(ctx, review)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetByIDs загружает отзывы по списку ID; порядок результата не гарантирован
func (r *reviewRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Review, error) {
	if len(ids) == 0 {
		return []entity.Review{}, nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []entity.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// Delete удаляет отзыв по ID
func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, reviewsCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// DeleteForListing удаляет отзывы объявления
// Берет и явный список ID, и обратную ссылку listing_id, чтобы поймать отзыв,
// который еще не успел попасть в список объявления
func (r *reviewRepository) DeleteForListing(ctx context.Context, listingID primitive.ObjectID, reviewIDs []primitive.ObjectID) (int64, error) {
	if reviewIDs == nil {
		reviewIDs = []primitive.ObjectID{}
	}

	filter := bson.M{
		"$or": bson.A{
			bson.M{"_id": bson.M{"$in": reviewIDs}},
			bson.M{"listing_id": listingID},
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, reviewsCollection)
	result, err := r.collection.DeleteMany(ctx, filter)
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete listing reviews: %w", err)
	}

	return result.DeletedCount, nil
}

// ListingIDs возвращает все различные listing_id, на которые ссылаются отзывы
func (r *reviewRepository) ListingIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "listing_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get review listing ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}

	return ids, nil
}

// DeleteByListingIDs удаляет все отзывы указанных объявлений
func (r *reviewRepository) DeleteByListingIDs(ctx context.Context, listingIDs []primitive.ObjectID) (int64, error) {
	if len(listingIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reviews by listing ids: %w", err)
	}

	return result.DeletedCount, nil
}
