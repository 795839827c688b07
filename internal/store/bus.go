package store

import (
	"context"
	"sync"
)

// Bus оповещает живые запросы об изменениях коллекций
type Bus interface {
	Publish(ctx context.Context, collection string) error
	// Listen возвращает канал сигналов об изменениях коллекции и функцию отписки.
	// Сигналы схлопываются: канал буферизован на одно значение.
	Listen(collection string) (<-chan struct{}, func())
}

// LocalBus - шина изменений внутри одного процесса
type LocalBus struct {
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

// NewLocalBus создает новый экземпляр LocalBus
func NewLocalBus() *LocalBus {
	return &LocalBus{listeners: make(map[string]map[chan struct{}]struct{})}
}

func (b *LocalBus) Publish(_ context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.listeners[collection] {
		select {
		case ch <- struct{}{}:
		default:
			// Сигнал уже ожидает обработки
		}
	}
	return nil
}

func (b *LocalBus) Listen(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if _, ok := b.listeners[collection]; !ok {
		b.listeners[collection] = make(map[chan struct{}]struct{})
	}
	b.listeners[collection][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners[collection], ch)
			if len(b.listeners[collection]) == 0 {
				delete(b.listeners, collection)
			}
		})
	}
}

// listenerCount используется в тестах
func (b *LocalBus) listenerCount(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[collection])
}
