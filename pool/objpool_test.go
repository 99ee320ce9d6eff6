package pool_test

import (
	"testing"

	"github.com/momentics/memlab/pool"
)

func TestSyncPoolReuse(t *testing.T) {
	created := 0
	sp := pool.NewSyncPool(func() *bullet {
		created++
		return &bullet{}
	})
	b := sp.Get()
	if b == nil {
		t.Fatal("Get returned nil")
	}
	if created != 1 {
		t.Fatalf("expected creator to run once, ran %d times", created)
	}
	b.X = 7
	sp.Put(b)
	// sync.Pool may drop items at any time, so only check the type contract.
	if got := sp.Get(); got == nil {
		t.Error("Get after Put returned nil")
	}
}
