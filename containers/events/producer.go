package events

import (
	"context"
	"sync"
	"time"
)

const (
	defaultBroadcastTimeout       = time.Minute
	defaultSubscriptionBufferSize = 16
)

// Producer broadcasts events to any number of subscriptions. Subscribers
// that fall behind longer than the broadcast timeout miss events rather than
// blocking the producer.
type Producer[T any] struct {
	sync.RWMutex
	subscriptionBufferSize int
	subs                   map[subID]*Subscription[T]
	nextID                 subID
	broadcastTimeout       time.Duration
}

type ProducerOpt[T any] func(*Producer[T])

// WithBroadcastTimeout sets how long Broadcast waits on each subscriber
// before dropping the send.
func WithBroadcastTimeout[T any](timeout time.Duration) ProducerOpt[T] {
	return func(p *Producer[T]) {
		p.broadcastTimeout = timeout
	}
}

// WithSubscriptionBuffer sets the channel buffer size of new subscriptions.
func WithSubscriptionBuffer[T any](size int) ProducerOpt[T] {
	return func(p *Producer[T]) {
		p.subscriptionBufferSize = size
	}
}

func NewProducer[T any](opts ...ProducerOpt[T]) *Producer[T] {
	producer := &Producer[T]{
		subs:                   make(map[subID]*Subscription[T]),
		subscriptionBufferSize: defaultSubscriptionBufferSize,
		broadcastTimeout:       defaultBroadcastTimeout,
	}
	for _, opt := range opts {
		opt(producer)
	}
	return producer
}

// Subscribe registers a new subscription with the producer.
func (p *Producer[T]) Subscribe() *Subscription[T] {
	p.Lock()
	defer p.Unlock()
	sub := &Subscription[T]{
		id:       p.nextID,
		events:   make(chan T, p.subscriptionBufferSize),
		producer: p,
	}
	p.subs[sub.id] = sub
	p.nextID++
	return sub
}

// Broadcast sends an event to all active subscriptions. Sends happen on
// separate goroutines so one slow consumer cannot stall the rest.
func (p *Producer[T]) Broadcast(ctx context.Context, event T) {
	p.RLock()
	defer p.RUnlock()
	for _, sub := range p.subs {
		go func(listener *Subscription[T]) {
			select {
			case listener.events <- event:
			case <-time.After(p.broadcastTimeout):
			case <-ctx.Done():
			}
		}(sub)
	}
}

func (p *Producer[T]) unsubscribe(id subID) {
	p.Lock()
	defer p.Unlock()
	delete(p.subs, id)
}

type subID uint64

// Subscription is a handle to a stream of events from a producer.
type Subscription[T any] struct {
	id       subID
	events   chan T
	producer *Producer[T]
	once     sync.Once
}

// Next blocks until the next event or context cancelation. Cancelation
// detaches the subscription from the producer.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-ctx.Done():
		var zeroVal T
		s.Close()
		return zeroVal, ctx.Err()
	}
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.producer.unsubscribe(s.id)
	})
}
