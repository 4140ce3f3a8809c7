package entity

// CreateListingRequest - атрибуты нового объявления
// Owner принимается, но игнорируется: владелец всегда берется из актора
type CreateListingRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Location    string   `json:"location" validate:"max=500"`
	Country     string   `json:"country" validate:"max=100"`
	Category    Category `json:"category" validate:"omitempty,listing_category"`
	Image       *Image   `json:"image"`
	Owner       string   `json:"owner,omitempty"`
}

// UpdateListingRequest - частичное обновление: nil означает "не менять"
type UpdateListingRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Location    *string   `json:"location" validate:"omitempty,max=500"`
	Country     *string   `json:"country" validate:"omitempty,max=100"`
	Category    *Category `json:"category" validate:"omitempty,listing_category"`
	Image       *Image    `json:"image"`
	Owner       *string   `json:"owner,omitempty"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Body   string `json:"body" validate:"required,max=2000"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}
