package services

import (
	"sync"
	"testing"
	"time"
)

func TestOwnerLocks_SerializesSameOwner(t *testing.T) {
	locks := newOwnerLocks()
	unlock := locks.lock("u1")

	acquired := make(chan struct{})
	go func() {
		release := locks.lock("u1")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestOwnerLocks_DifferentOwnersDoNotBlock(t *testing.T) {
	locks := newOwnerLocks()
	unlock := locks.lock("u1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		locks.lock("u2")()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on u2 blocked behind u1")
	}
}

func TestOwnerLocks_ReleasesEntries(t *testing.T) {
	locks := newOwnerLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.lock("u1")()
		}()
	}
	wg.Wait()

	if n := locks.size(); n != 0 {
		t.Errorf("expected no lock entries after release, found %d", n)
	}
}
