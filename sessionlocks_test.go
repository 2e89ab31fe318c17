package quizgame

import (
	"sync"
	"testing"
	"time"
)

func TestSessionLocksSerializeSameKey(t *testing.T) {
	locks := NewSessionLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("session-a")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			// read-modify-write that would lose updates without the lock
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d holders at once, want 1", maxSeen)
	}
	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if n := locks.Size(); n != 0 {
		t.Errorf("%d locks left behind", n)
	}
}

func TestSessionLocksIndependentKeys(t *testing.T) {
	locks := NewSessionLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on b waited for a")
	}
}

func TestSessionLocksUnlockTwice(t *testing.T) {
	locks := NewSessionLocks()
	unlock := locks.Lock("a")
	unlock()
	unlock()

	if n := locks.Size(); n != 0 {
		t.Errorf("%d locks left behind", n)
	}
	// still usable
	locks.Lock("a")()
}
