package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/tacticsboard/board/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapBackend struct {
	values map[string][]byte
	err    error
}

func newMapBackend() *mapBackend {
	return &mapBackend{values: make(map[string][]byte)}
}

func (b *mapBackend) Init() error  { return nil }
func (b *mapBackend) Close() error { return nil }

func (b *mapBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if b.err != nil {
		return nil, false, b.err
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *mapBackend) Put(_ context.Context, key string, value []byte) error {
	if b.err != nil {
		return b.err
	}
	b.values[key] = value
	return nil
}

func sampleDoc() core.Document {
	return core.NewDocument(
		[]core.Marker{
			{ID: 1, Position: core.Pt(100, 50), Color: core.Palette[0], Label: "C1", Shape: core.ShapeCircle},
			{ID: 4, Position: core.Pt(10, 5), Color: core.Palette[1], Label: "T", Shape: core.ShapeText,
				Path: []core.Point{core.Pt(1, 1), core.Pt(2, 2)}},
		},
		[]core.Line{{ID: 2, Points: []core.Point{core.Pt(10, 10), core.Pt(20, 10), core.Pt(20, 20)}, Color: core.Palette[2]}},
	)
}

func TestAdapter_RoundTrip(t *testing.T) {
	b := newMapBackend()
	a := NewAdapter(b, "", nil)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, sampleDoc()))
	assert.Contains(t, b.values, DefaultKey)

	doc, ok, err := a.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleDoc(), doc)
}

func TestAdapter_LoadMissing(t *testing.T) {
	a := NewAdapter(newMapBackend(), "board-1", nil)
	doc, ok, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, doc.Markers)
}

func TestAdapter_LoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"markers":[{"id":1`},
		{"wrong types", `{"markers":"nope"}`},
		{"invalid line", `{"lines":[{"id":1,"color":"#e53935","points":[{"x":1,"y":1}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newMapBackend()
			b.values[DefaultKey] = []byte(tt.data)
			_, ok, err := NewAdapter(b, DefaultKey, nil).Load(context.Background())
			assert.False(t, ok)
			assert.ErrorIs(t, err, core.ErrMalformedDocument)
		})
	}
}

func TestAdapter_BackendErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	b := newMapBackend()
	b.err = boom
	a := NewAdapter(b, "k", nil)

	assert.ErrorIs(t, a.Save(context.Background(), sampleDoc()), boom)
	_, ok, err := a.Load(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}
