package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockManager_SerializesSameKey(t *testing.T) {
	lm := NewLockManager()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := lm.Lock("user-1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, lm.Len(), "idle keys should be released")
}

func TestLockManager_DifferentKeysIndependent(t *testing.T) {
	lm := NewLockManager()

	unlockA := lm.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := lm.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for key b blocked behind key a")
	}
}

func TestLockManager_UnlockIdempotent(t *testing.T) {
	lm := NewLockManager()

	unlock := lm.Lock("k")
	unlock()
	unlock()

	assert.Equal(t, 0, lm.Len())

	// Lock again to prove the mutex was not double-unlocked into a broken state
	unlock = lm.Lock("k")
	unlock()
}
