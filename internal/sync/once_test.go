package sync

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestOnceErr(t *testing.T) {
	var o OnceErr[int]
	var calls atomic.Int32
	wantErr := errors.New("first failure")

	f := func() (int, error) {
		calls.Add(1)
		return 7, wantErr
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := o.Do(f)
			if v != 7 || !errors.Is(err, wantErr) {
				t.Errorf("Do() = %d, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("f ran %d times", n)
	}

	// later calls replay the cached result, even with a different f
	if v, err := o.Do(func() (int, error) { return 99, nil }); v != 7 || !errors.Is(err, wantErr) {
		t.Errorf("replayed Do() = %d, %v", v, err)
	}
}

func TestOnceValue(t *testing.T) {
	calls := 0
	f := OnceValue(func() (string, error) {
		calls++
		return "built", nil
	})
	for i := 0; i < 3; i++ {
		if v, err := f(); v != "built" || err != nil {
			t.Fatalf("f() = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("wrapped func ran %d times", calls)
	}
}
