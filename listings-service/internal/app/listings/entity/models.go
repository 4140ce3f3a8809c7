package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeometryTypePoint - единственный допустимый тип геометрии (GeoJSON)
const GeometryTypePoint = "Point"

// Coordinates - пара долгота/широта
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

// Geometry хранится в формате GeoJSON: coordinates = [lng, lat]
type Geometry struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// NewPoint строит GeoJSON точку из координат
func NewPoint(c Coordinates) Geometry {
	return Geometry{
		Type:        GeometryTypePoint,
		Coordinates: []float64{c.Longitude, c.Latitude},
	}
}

// Image - ссылка на загруженное изображение (url + ключ в хранилище)
type Image struct {
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename" bson:"filename"`
}

// Listing - объявление каталога
// Reviews - авторитетный упорядоченный список отзывов (порядок = порядок создания)
type Listing struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	Price       *float64             `json:"price,omitempty" bson:"price,omitempty"`
	Location    string               `json:"location" bson:"location"`
	Country     string               `json:"country,omitempty" bson:"country,omitempty"`
	Category    Category             `json:"category,omitempty" bson:"category,omitempty"`
	Image       *Image               `json:"image,omitempty" bson:"image,omitempty"`
	Geometry    Geometry             `json:"geometry" bson:"geometry"`
	OwnerID     string               `json:"owner" bson:"owner"` // ID пользователя из провайдера идентификации
	Reviews     []primitive.ObjectID `json:"reviews" bson:"reviews"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`
}

// Review - отзыв к объявлению
// ListingID - обратная ссылка, по ней выполняется каскадное удаление и сверка
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ListingID primitive.ObjectID `json:"listing_id" bson:"listing_id"`
	Body      string             `json:"body" bson:"body"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	AuthorID  string             `json:"author" bson:"author"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// UserProfile - публичная часть пользователя из провайдера идентификации
type UserProfile struct {
	ID       string `json:"id" gorm:"column:id;primaryKey"`
	Username string `json:"username" gorm:"column:username"`
	Email    string `json:"email" gorm:"column:email"`
}

func (UserProfile) TableName() string {
	return "users"
}

// ReviewWithAuthor - отзыв с подставленным профилем автора
type ReviewWithAuthor struct {
	Review
	Author *UserProfile `json:"author_profile"`
}

// ListingDetails - объявление с раскрытыми ссылками на владельца и отзывы
type ListingDetails struct {
	Listing
	Owner   *UserProfile       `json:"owner_profile"`
	Reviews []ReviewWithAuthor `json:"reviews"`
}

// Типы событий для Kafka
const (
	EventListingCreated = "LISTING_CREATED"
	EventListingUpdated = "LISTING_UPDATED"
	EventListingDeleted = "LISTING_DELETED"
	EventReviewCreated  = "REVIEW_CREATED"
	EventReviewDeleted  = "REVIEW_DELETED"
)

// ListingEvent - событие изменения объявления или его отзывов
type ListingEvent struct {
	EventType string    `json:"event_type"`
	ListingID string    `json:"listing_id"`
	ReviewID  string    `json:"review_id,omitempty"`
	ActorID   string    `json:"actor_id"`
	Category  Category  `json:"category,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
