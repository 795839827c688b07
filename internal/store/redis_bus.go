package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "docstore:"

// RedisBus разносит сигналы об изменениях между репликами через Redis Pub/Sub.
// Локальные слушатели получают сигналы только после того, как Run получит их из Redis,
// включая собственные публикации процесса.
type RedisBus struct {
	client *redis.Client
	local  *LocalBus
	log    *logrus.Entry
}

// NewRedisBus создает новый экземпляр RedisBus
func NewRedisBus(client *redis.Client, log *logrus.Entry) *RedisBus {
	return &RedisBus{
		client: client,
		local:  NewLocalBus(),
		log:    log,
	}
}

func (b *RedisBus) Publish(ctx context.Context, collection string) error {
	if err := b.client.Publish(ctx, channelName(collection), collection).Err(); err != nil {
		return fmt.Errorf("ошибка публикации изменения %s: %w", collection, err)
	}
	return nil
}

func (b *RedisBus) Listen(collection string) (<-chan struct{}, func()) {
	return b.local.Listen(collection)
}

// Run слушает Redis до отмены ctx
func (b *RedisBus) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	// Дожидаемся подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("ошибка подписки на изменения в Redis: %w", err)
	}
	b.log.Info("✅ Подписка на изменения документов в Redis активна")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			collection, ok := collectionFromChannel(msg.Channel)
			if !ok {
				b.log.WithField("channel", msg.Channel).Warn("Неизвестный канал изменений")
				continue
			}
			b.local.Publish(ctx, collection)
		}
	}
}

func channelName(collection string) string {
	return channelPrefix + collection
}

func collectionFromChannel(channel string) (string, bool) {
	collection := strings.TrimPrefix(channel, channelPrefix)
	if collection == channel || collection == "" {
		return "", false
	}
	return collection, true
}
