package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 11, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		aStart   time.Time
		aEnd     time.Time
		bStart   time.Time
		bEnd     time.Time
		expected bool
	}{
		{
			name:   "partial overlap",
			aStart: at(11, 30), aEnd: at(12, 0),
			bStart: at(11, 20), bEnd: at(11, 40),
			expected: true,
		},
		{
			name:   "b inside a",
			aStart: at(9, 0), aEnd: at(17, 0),
			bStart: at(12, 0), bEnd: at(12, 30),
			expected: true,
		},
		{
			name:   "identical intervals",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 0), bEnd: at(10, 30),
			expected: true,
		},
		{
			name:   "touching endpoints - b ends where a starts",
			aStart: at(11, 30), aEnd: at(12, 0),
			bStart: at(11, 0), bEnd: at(11, 30),
			expected: false,
		},
		{
			name:   "touching endpoints - b starts where a ends",
			aStart: at(11, 30), aEnd: at(12, 0),
			bStart: at(12, 0), bEnd: at(12, 30),
			expected: false,
		},
		{
			name:   "disjoint intervals",
			aStart: at(9, 0), aEnd: at(10, 0),
			bStart: at(14, 0), bEnd: at(15, 0),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Пересечение симметрично
			assert.Equal(t, tt.expected, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	busy := []Window{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(13, 0), End: at(14, 0)},
	}

	assert.True(t, OverlapsAny(at(9, 15), at(9, 45), busy))
	assert.True(t, OverlapsAny(at(13, 30), at(14, 30), busy))
	assert.False(t, OverlapsAny(at(9, 30), at(13, 0), busy))
	assert.False(t, OverlapsAny(at(10, 0), at(10, 30), nil))
}

func TestSlice(t *testing.T) {
	t.Run("30 minute slots with 15 minute interval", func(t *testing.T) {
		slots := Slice(at(9, 0), at(10, 0), 30*time.Minute, 15*time.Minute)

		require.Len(t, slots, 3)
		assert.Equal(t, at(9, 0), slots[0].Start)
		assert.Equal(t, at(9, 30), slots[0].End)
		assert.Equal(t, at(9, 15), slots[1].Start)
		assert.Equal(t, at(9, 30), slots[2].Start)
		assert.Equal(t, at(10, 0), slots[2].End)
	})

	t.Run("slot duration equals window", func(t *testing.T) {
		slots := Slice(at(9, 0), at(9, 30), 30*time.Minute, 15*time.Minute)

		require.Len(t, slots, 1)
		assert.Equal(t, at(9, 0), slots[0].Start)
	})

	t.Run("slot duration exceeds window", func(t *testing.T) {
		slots := Slice(at(9, 0), at(9, 20), 30*time.Minute, 15*time.Minute)
		assert.Empty(t, slots)
	})

	t.Run("zero length window", func(t *testing.T) {
		assert.Empty(t, Slice(at(9, 0), at(9, 0), 30*time.Minute, 15*time.Minute))
	})

	t.Run("invalid duration or interval", func(t *testing.T) {
		assert.Empty(t, Slice(at(9, 0), at(17, 0), 0, 15*time.Minute))
		assert.Empty(t, Slice(at(9, 0), at(17, 0), 30*time.Minute, 0))
	})

	t.Run("full working day", func(t *testing.T) {
		// 09:00-17:00, слоты по 30 минут с шагом 15 минут
		slots := Slice(at(9, 0), at(17, 0), 30*time.Minute, 15*time.Minute)

		require.NotEmpty(t, slots)
		assert.Equal(t, at(9, 0), slots[0].Start)
		// Последний слот начинается в 16:30 и заканчивается ровно в 17:00
		last := slots[len(slots)-1]
		assert.Equal(t, at(16, 30), last.Start)
		assert.Equal(t, at(17, 0), last.End)
	})
}

func TestWindowHelpers(t *testing.T) {
	w := Window{Start: at(9, 0), End: at(17, 0)}

	assert.True(t, w.IsValid())
	assert.Equal(t, 8*time.Hour, w.Duration())
	assert.True(t, w.Contains(Window{Start: at(9, 0), End: at(9, 30)}))
	assert.True(t, w.Contains(Window{Start: at(16, 30), End: at(17, 0)}))
	assert.False(t, w.Contains(Window{Start: at(16, 45), End: at(17, 15)}))
	assert.False(t, Window{Start: at(9, 0), End: at(9, 0)}.IsValid())
}
