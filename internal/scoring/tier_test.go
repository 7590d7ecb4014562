package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierTable_ForScore(t *testing.T) {
	t.Parallel()
	table := DefaultTierTable()

	tests := []struct {
		name  string
		score int
		want  string
	}{
		{"zero is lowest tier", 0, "Bronze"},
		{"negative treated as zero", -50, "Bronze"},
		{"just below silver", 999, "Bronze"},
		{"exact silver threshold", 1000, "Silver"},
		{"mid gold", 7500, "Gold"},
		{"exact platinum threshold", 15000, "Platinum"},
		{"above highest threshold", 1000000, "Diamond"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, table.ForScore(tt.score))
		})
	}
}

func TestTierTable_Monotonic(t *testing.T) {
	t.Parallel()
	table := DefaultTierTable()

	prev := -1
	for score := 0; score <= 60000; score += 137 {
		idx := table.Index(table.ForScore(score))
		require.GreaterOrEqual(t, idx, prev, "tier decreased at score %d", score)
		prev = idx
	}
}

func TestTierTable_Idempotent(t *testing.T) {
	t.Parallel()
	table := DefaultTierTable()
	for _, score := range []int{0, 999, 1000, 49999, 50000} {
		assert.Equal(t, table.ForScore(score), table.ForScore(score))
	}
}

func TestNewTierTable_Validation(t *testing.T) {
	t.Parallel()

	t.Run("empty table rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewTierTable(nil)
		assert.Error(t, err)
	})

	t.Run("lowest tier must start at zero", func(t *testing.T) {
		t.Parallel()
		_, err := NewTierTable([]Tier{{Name: "Silver", MinPoints: 100}})
		assert.Error(t, err)
	})

	t.Run("duplicate thresholds rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewTierTable([]Tier{
			{Name: "Bronze", MinPoints: 0},
			{Name: "AlsoBronze", MinPoints: 0},
		})
		assert.Error(t, err)
	})

	t.Run("unsorted input normalized", func(t *testing.T) {
		t.Parallel()
		table, err := NewTierTable([]Tier{
			{Name: "Gold", MinPoints: 500},
			{Name: "Bronze", MinPoints: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, "Bronze", table.Lowest())
		assert.Equal(t, "Gold", table.ForScore(500))
	})
}

func TestLoadTierTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tiers.yml")
	data := []byte("- name: Bronze\n  min_points: 0\n- name: Elite\n  min_points: 100\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	table, err := LoadTierTable(path)
	require.NoError(t, err)
	assert.Equal(t, "Elite", table.ForScore(150))
	assert.Equal(t, "Bronze", table.ForScore(99))

	_, err = LoadTierTable(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
