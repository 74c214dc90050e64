package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 12, 7, 19, 0, 0, 0, time.UTC)

func TestSteppingClock_StartsAtStart(t *testing.T) {
	clock := NewSteppingClock(epoch, time.Minute)
	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, int64(1), clock.Calls())
}

func TestSteppingClock_AdvancesByStep(t *testing.T) {
	clock := NewSteppingClock(epoch, time.Minute)

	clock.Now()
	assert.Equal(t, epoch.Add(time.Minute), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Minute), clock.Now())
}

func TestSteppingClock_Reset(t *testing.T) {
	clock := NewSteppingClock(epoch, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, epoch, clock.Now())
}

func TestSteppingClock_ThreadSafe(t *testing.T) {
	clock := NewSteppingClock(epoch, time.Second)
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			now := clock.Now()
			mu.Lock()
			seen[now] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines)
}
