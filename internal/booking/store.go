package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// submitGuardTTL bounds how long a flow stays locked if the process dies
// mid-submission.
const submitGuardTTL = 30 * time.Second

// FlowStore persists in-progress flows for the duration of the booking.
// Flows expire on their own; nothing survives completion or abandonment.
type FlowStore interface {
	Save(ctx context.Context, flow *Flow) error
	Get(ctx context.Context, id string) (*Flow, error)
	Delete(ctx context.Context, id string) error

	// BeginSubmit marks a flow as having a submission in flight. It returns
	// ErrSubmitInFlight when another submission already holds the mark, so
	// repeated clicks cannot issue concurrent creation requests.
	BeginSubmit(ctx context.Context, id string) error
	EndSubmit(ctx context.Context, id string) error
}

// RedisFlowStore keeps flows as JSON values with a TTL.
type RedisFlowStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisFlowStore constructs a redis-backed flow store.
func NewRedisFlowStore(client *redis.Client, ttl time.Duration) *RedisFlowStore {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisFlowStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("portal.internal.booking.store"),
	}
}

func flowKey(id string) string        { return fmt.Sprintf("booking_flow:%s", id) }
func submitGuardKey(id string) string { return fmt.Sprintf("booking_flow_submit:%s", id) }

func (s *RedisFlowStore) Save(ctx context.Context, flow *Flow) error {
	ctx, span := s.tracer.Start(ctx, "booking.save_flow")
	defer span.End()

	data, err := json.Marshal(flow)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: marshal flow: %w", err)
	}
	if err := s.redis.Set(ctx, flowKey(flow.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: persist flow: %w", err)
	}
	return nil
}

func (s *RedisFlowStore) Get(ctx context.Context, id string) (*Flow, error) {
	ctx, span := s.tracer.Start(ctx, "booking.load_flow")
	defer span.End()

	data, err := s.redis.Get(ctx, flowKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrFlowNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("booking: load flow: %w", err)
	}
	var flow Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: decode flow: %w", err)
	}
	return &flow, nil
}

func (s *RedisFlowStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, flowKey(id), submitGuardKey(id)).Err(); err != nil {
		return fmt.Errorf("booking: delete flow: %w", err)
	}
	return nil
}

func (s *RedisFlowStore) BeginSubmit(ctx context.Context, id string) error {
	ok, err := s.redis.SetNX(ctx, submitGuardKey(id), "1", submitGuardTTL).Result()
	if err != nil {
		return fmt.Errorf("booking: submit guard: %w", err)
	}
	if !ok {
		return ErrSubmitInFlight
	}
	return nil
}

func (s *RedisFlowStore) EndSubmit(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, submitGuardKey(id)).Err(); err != nil {
		return fmt.Errorf("booking: release submit guard: %w", err)
	}
	return nil
}

// MemoryFlowStore is an in-memory FlowStore for development and tests.
type MemoryFlowStore struct {
	mu         sync.RWMutex
	flows      map[string]*Flow
	submitting map[string]struct{}
}

// NewMemoryFlowStore creates an empty in-memory flow store.
func NewMemoryFlowStore() *MemoryFlowStore {
	return &MemoryFlowStore{
		flows:      make(map[string]*Flow),
		submitting: make(map[string]struct{}),
	}
}

func (s *MemoryFlowStore) Save(ctx context.Context, flow *Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *flow
	s.flows[flow.ID] = &copied
	return nil
}

func (s *MemoryFlowStore) Get(ctx context.Context, id string) (*Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flow, ok := s.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	copied := *flow
	return &copied, nil
}

func (s *MemoryFlowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	delete(s.submitting, id)
	return nil
}

func (s *MemoryFlowStore) BeginSubmit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.submitting[id]; busy {
		return ErrSubmitInFlight
	}
	s.submitting[id] = struct{}{}
	return nil
}

func (s *MemoryFlowStore) EndSubmit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitting, id)
	return nil
}
