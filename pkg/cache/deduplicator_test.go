package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeduplicator(t *testing.T) {
	dedup := NewDeduplicator()

	response, err := dedup.Execute(context.Background(), "test-key", func() (string, error) {
		return "test response", nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if response != "test response" {
		t.Errorf("Expected 'test response', got %s", response)
	}

	stats := dedup.Stats()
	if stats.Requests != 1 {
		t.Errorf("Expected 1 request, got %d", stats.Requests)
	}
	if stats.Deduplicated != 0 {
		t.Errorf("Expected 0 deduplicated, got %d", stats.Deduplicated)
	}
}

func TestDeduplicatorConcurrent(t *testing.T) {
	dedup := NewDeduplicator()

	var calls atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup

	numRequests := 5
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := dedup.Execute(context.Background(), "test-key", func() (string, error) {
				calls.Add(1)
				<-release
				return "test response", nil
			})
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if response != "test response" {
				t.Errorf("Expected 'test response', got %s", response)
			}
		}()
	}

	// give every goroutine time to join the flight
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Expected 1 underlying call, got %d", calls.Load())
	}
	if stats := dedup.Stats(); stats.Requests != int64(numRequests) {
		t.Errorf("Expected %d requests, got %d", numRequests, stats.Requests)
	}
}

func TestDeduplicatorError(t *testing.T) {
	dedup := NewDeduplicator()
	boom := errors.New("boom")

	_, err := dedup.Execute(context.Background(), "k", func() (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func TestDeduplicatorContextCancel(t *testing.T) {
	dedup := NewDeduplicator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)

	_, err := dedup.Execute(ctx, "k", func() (string, error) {
		<-release
		return "late", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
