package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpreadDelayBoundaries(t *testing.T) {
	for _, total := range []int{2, 3, 5, 10, 100} {
		for _, spread := range []int{1, 30, 55, 60} {
			assert.Equal(t, time.Duration(0), SpreadDelay(0, total, spread),
				"first item must dispatch immediately (total=%d spread=%d)", total, spread)
			assert.Equal(t, time.Duration(spread)*time.Minute, SpreadDelay(total-1, total, spread),
				"last item must land on the full window (total=%d spread=%d)", total, spread)
		}
	}
}

func TestSpreadDelayDisabled(t *testing.T) {
	assert.Equal(t, time.Duration(0), SpreadDelay(0, 1, 60))
	assert.Equal(t, time.Duration(0), SpreadDelay(5, 1, 60))
	assert.Equal(t, time.Duration(0), SpreadDelay(2, 10, 0))
	assert.Equal(t, time.Duration(0), SpreadDelay(2, 10, -5))
	assert.Equal(t, time.Duration(0), SpreadDelay(0, 0, 60))
}

func TestSpreadDelayMonotonic(t *testing.T) {
	for _, total := range []int{2, 3, 7, 50} {
		prev := time.Duration(-1)
		for i := 0; i < total; i++ {
			d := SpreadDelay(i, total, 55)
			assert.GreaterOrEqual(t, d, prev, "delay must be non-decreasing (total=%d index=%d)", total, i)
			prev = d
		}
	}
}

func TestSpreadDelayThreeItems(t *testing.T) {
	assert.Equal(t, 0*time.Minute, SpreadDelay(0, 3, 60))
	assert.Equal(t, 30*time.Minute, SpreadDelay(1, 3, 60))
	assert.Equal(t, 60*time.Minute, SpreadDelay(2, 3, 60))
}

func TestSpreadDelayFloors(t *testing.T) {
	// 7 items over 60 minutes: 60/6 = 10-minute steps, exact.
	for i := 0; i < 7; i++ {
		assert.Equal(t, time.Duration(i*10)*time.Minute, SpreadDelay(i, 7, 60))
	}
	// 4 items over 10 minutes: floor(10/3)=3, floor(20/3)=6, last exact.
	assert.Equal(t, 3*time.Minute, SpreadDelay(1, 4, 10))
	assert.Equal(t, 6*time.Minute, SpreadDelay(2, 4, 10))
	assert.Equal(t, 10*time.Minute, SpreadDelay(3, 4, 10))
}

func TestSpreadDelayDeterministic(t *testing.T) {
	a := SpreadDelay(3, 9, 55)
	b := SpreadDelay(3, 9, 55)
	assert.Equal(t, a, b)
}
