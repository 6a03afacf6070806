package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	testCases := []struct {
		description string
		a, b        string
		same        bool
	}{
		{description: "identical content", a: "flood safety", b: "flood safety", same: true},
		{description: "changed content", a: "flood safety", b: "flood safety!", same: false},
	}
	for _, tc := range testCases {
		da, err := Digest([]byte(tc.a))
		require.NoError(t, err, tc.description)
		db, err := Digest([]byte(tc.b))
		require.NoError(t, err, tc.description)
		assert.Equal(t, tc.same, da == db, tc.description)
		assert.NotEmpty(t, da, tc.description)
	}
}

func TestMap_DataLoad(t *testing.T) {
	m := NewMap[string, string]()
	m.Set("/data/pdfs/a.pdf", "abc")
	m.Set("/data/pdfs/b.pdf", "def")
	data, err := m.Data()
	require.NoError(t, err)

	loaded := NewMap[string, string]()
	loaded.Set("stale", "x")
	require.NoError(t, loaded.Load(data))
	assert.Equal(t, m.Snapshot(), loaded.Snapshot())
	_, ok := loaded.Get("stale")
	assert.False(t, ok)
}

func TestMap_Replace(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("a", 1)
	entries := map[string]int{"b": 2}
	m.Replace(entries)
	entries["c"] = 3
	assert.Equal(t, 1, m.Size())
	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	m.Delete("b")
	assert.Equal(t, 0, m.Size())
}
