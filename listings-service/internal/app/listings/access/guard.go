package access

import "wanderlust/listings-service/internal/app/listings/entity"

// Actor - аутентифицированный пользователь, от имени которого выполняется запрос
type Actor struct {
	ID    string
	Email string
	Role  string
}

// IsOwner сообщает, является ли актор владельцем объявления
func IsOwner(actor *Actor, listing *entity.Listing) bool {
	if actor == nil || actor.ID == "" || listing == nil {
		return false
	}
	return listing.OwnerID == actor.ID
}

// IsAuthor сообщает, является ли актор автором отзыва
func IsAuthor(actor *Actor, review *entity.Review) bool {
	if actor == nil || actor.ID == "" || review == nil {
		return false
	}
	return review.AuthorID == actor.ID
}
