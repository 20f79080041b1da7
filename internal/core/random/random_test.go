package random

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestUniform_Range(t *testing.T) {
	src := NewLocked(7)
	for i := 0; i < 1000; i++ {
		v := Uniform(src, 0.9, 1.1)
		assert.GreaterOrEqual(t, v, 0.9)
		assert.Less(t, v, 1.1)
	}
}

func TestFixed(t *testing.T) {
	assert.InDelta(t, 1.0, Uniform(Fixed(0.5), 0.9, 1.1), 1e-12)
	assert.True(t, Coin(Fixed(0.1)))
	assert.False(t, Coin(Fixed(0.9)))
}

func TestLocked_Concurrent(t *testing.T) {
	src := NewLocked(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = src.Float64()
			}
		}()
	}
	wg.Wait()
}
