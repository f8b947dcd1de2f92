package quotes

import (
	"math/rand/v2"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/quotes.json", []byte(`{"quotes": ["one", "", "two"]}`), 0o644))

	got, err := Load(fs, "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestLoad_Missing(t *testing.T) {
	got, err := Load(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/quotes.json", []byte(`["not", "an", "object"`), 0o644))

	_, err := Load(fs, "/data")
	assert.Error(t, err)
}

func TestDeck_NoRepeatsWithinPass(t *testing.T) {
	all := []string{"a", "b", "c", "d"}
	d := NewDeck(all, rand.New(rand.NewPCG(1, 2)))

	for pass := 0; pass < 3; pass++ {
		seen := map[string]bool{}
		for range all {
			q := d.Draw()
			assert.False(t, seen[q], "quote %q repeated in pass %d", q, pass)
			seen[q] = true
		}
		assert.Len(t, seen, len(all))
	}
}

func TestDeck_Empty(t *testing.T) {
	d := NewDeck(nil, nil)
	assert.Equal(t, "", d.Draw())
	assert.Zero(t, d.Len())
}

func TestDeck_DoesNotAliasInput(t *testing.T) {
	in := []string{"x", "y"}
	d := NewDeck(in, rand.New(rand.NewPCG(3, 4)))
	d.Draw()
	d.Draw()
	assert.Equal(t, []string{"x", "y"}, in)
}
