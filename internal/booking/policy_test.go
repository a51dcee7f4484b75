package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumina-dental/portal/internal/scheduling"
)

func TestStrictPolicyWaits(t *testing.T) {
	policy := StrictPolicy{}
	outcome, err := policy.Execute(context.Background(), func(ctx context.Context) (*scheduling.Appointment, error) {
		time.Sleep(20 * time.Millisecond)
		return &scheduling.Appointment{ID: 7}, nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Optimistic {
		t.Error("strict policy reported optimistic")
	}
	if outcome.Appointment == nil || outcome.Appointment.ID != 7 {
		t.Errorf("appointment = %+v", outcome.Appointment)
	}
}

func TestOptimisticPolicyFastSuccess(t *testing.T) {
	policy := NewOptimisticPolicy(time.Second, nil)
	outcome, err := policy.Execute(context.Background(), func(ctx context.Context) (*scheduling.Appointment, error) {
		return &scheduling.Appointment{ID: 9}, nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Optimistic {
		t.Error("fast success reported optimistic")
	}
	if outcome.Appointment.ID != 9 {
		t.Errorf("appointment id = %d", outcome.Appointment.ID)
	}
}

func TestOptimisticPolicyErrorBeforeDeadline(t *testing.T) {
	policy := NewOptimisticPolicy(time.Second, nil)
	_, err := policy.Execute(context.Background(), func(ctx context.Context) (*scheduling.Appointment, error) {
		return nil, errors.New("slot taken")
	})
	if err == nil {
		t.Fatal("fast failure reported as success")
	}
}

func TestOptimisticPolicyTimeout(t *testing.T) {
	policy := NewOptimisticPolicy(10*time.Millisecond, nil)

	done := make(chan struct{})
	outcome, err := policy.Execute(context.Background(), func(ctx context.Context) (*scheduling.Appointment, error) {
		defer close(done)
		time.Sleep(100 * time.Millisecond)
		return &scheduling.Appointment{ID: 3}, nil
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !outcome.Optimistic {
		t.Fatal("slow creation not reported optimistic")
	}
	if outcome.Appointment != nil {
		t.Errorf("optimistic outcome carries appointment %+v", outcome.Appointment)
	}

	// The in-flight call keeps running to completion after the deadline.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("in-flight creation was abandoned")
	}
}

func TestOptimisticPolicySurvivesCallerCancel(t *testing.T) {
	policy := NewOptimisticPolicy(10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sawCancel := make(chan bool, 1)
	outcome, err := policy.Execute(ctx, func(ctx context.Context) (*scheduling.Appointment, error) {
		time.Sleep(50 * time.Millisecond)
		sawCancel <- ctx.Err() != nil
		return &scheduling.Appointment{ID: 1}, nil
	})
	cancel()

	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !outcome.Optimistic {
		t.Fatal("expected optimistic outcome")
	}
	if <-sawCancel {
		t.Error("creation context was cancelled with the caller's")
	}
}
