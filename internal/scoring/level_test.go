package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{-10, 1},
		{9, 1},
		{10, 2},
		{90, 4},
		{990, 10},
		{1000, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.points), "points=%d", tt.points)
	}
}

func TestLevel_NonDecreasing(t *testing.T) {
	t.Parallel()

	prev := 0
	for points := 0; points <= 20000; points += 7 {
		lvl := Level(points)
		require.GreaterOrEqual(t, lvl, prev, "level decreased at %d points", points)
		prev = lvl
	}
}
