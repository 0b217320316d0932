package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLineLocks_SameTupleBlocksUntilUnlock(t *testing.T) {
	locks := newLineLocks()
	unlock := locks.lock("cust-1", "prod-1", "size-m")

	acquired := make(chan struct{})
	go func() {
		u := locks.lock("cust-1", "prod-1", "size-m")
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("same-tuple lock acquired while already held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("same-tuple lock not released by unlock")
	}
}

func TestLineLocks_MutualExclusion(t *testing.T) {
	locks := newLineLocks()

	// Deliberately unsynchronized counter: the race detector and the final
	// total both catch a lock that stops serializing the tuple.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				unlock := locks.lock("cust-1", "prod-1", "size-m")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1600, counter)
}
