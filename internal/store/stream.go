package store

import (
	"context"
	"sync"
)

// Snapshot - полный результат живого запроса на момент доставки
type Snapshot struct {
	Docs []Document
	Err  error
}

// Stream - живой запрос с единственным потребителем.
// Медленный потребитель получает только последний снимок.
type Stream struct {
	C      <-chan Snapshot
	cancel context.CancelFunc
	done   chan struct{}
}

// FetchFunc выполняет разовый запрос
type FetchFunc func(ctx context.Context, q Query) ([]Document, error)

// NewStream запускает живой запрос: первый снимок доставляется сразу, следующие - после
// каждого сигнала шины об изменении коллекции запроса.
func NewStream(ctx context.Context, bus Bus, q Query, fetch FetchFunc) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot)
	s := &Stream{C: out, cancel: cancel, done: make(chan struct{})}

	// Подписываемся до первого чтения, чтобы не пропустить изменения
	changes, stop := bus.Listen(q.Collection)

	go func() {
		defer close(s.done)
		defer close(out)
		defer stop()

		pending := load(ctx, q, fetch)
		hasPending := true

		for {
			var send chan<- Snapshot
			if hasPending {
				send = out
			}

			select {
			case <-ctx.Done():
				return
			case <-changes:
				pending = load(ctx, q, fetch)
				if ctx.Err() != nil {
					return
				}
				hasPending = true
			case send <- pending:
				hasPending = false
			}
		}
	}()

	return s
}

func load(ctx context.Context, q Query, fetch FetchFunc) Snapshot {
	docs, err := fetch(ctx, q)
	return Snapshot{Docs: docs, Err: err}
}

// Cancel останавливает поток и закрывает канал C
func (s *Stream) Cancel() {
	s.cancel()
	<-s.done
}

// Watch вызывает onSnapshot для каждого снимка в отдельной горутине.
// Возвращаемая функция останавливает поток и ждет завершения обработчика,
// поэтому ее нельзя вызывать изнутри onSnapshot.
func Watch(stream *Stream, onSnapshot func(Snapshot)) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range stream.C {
			onSnapshot(snap)
		}
	}()

	return sync.OnceFunc(func() {
		stream.Cancel()
		<-done
	})
}
