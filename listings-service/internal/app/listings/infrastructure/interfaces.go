package infrastructure

import "context"

// MessagePublisher отправляет события объявлений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
