package store

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		def  int
		want PageRequest
	}{
		{"defaults", PageRequest{}, 10, PageRequest{Page: 1, PageSize: 10}},
		{"negative page", PageRequest{Page: -3, PageSize: 5}, 10, PageRequest{Page: 1, PageSize: 5}},
		{"capped size", PageRequest{Page: 2, PageSize: 500}, 20, PageRequest{Page: 2, PageSize: MaxPageSize}},
		{"fallback default", PageRequest{}, 0, PageRequest{Page: 1, PageSize: 20}},
		{"capped page", PageRequest{Page: math.MaxInt, PageSize: 100}, 20, PageRequest{Page: MaxPage, PageSize: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(tt.def))
		})
	}

	assert.Equal(t, 20, PageRequest{Page: 3, PageSize: 10}.Offset())
	assert.Positive(t, PageRequest{Page: math.MaxInt}.Normalize(20).Offset())
}

func TestNewOffsetPage(t *testing.T) {
	page := newOffsetPage([]int(nil), 21, PageRequest{Page: 1, PageSize: 10})
	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)

	page = newOffsetPage([]int{1}, 0, PageRequest{Page: 1, PageSize: 10})
	assert.Equal(t, 0, page.TotalPages)
}

func TestCursorRoundTrip(t *testing.T) {
	in := OrderCursor{CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), ID: 77}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)

	first, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.After(time.Now()))

	_, err = DecodeCursor("%%%")
	assert.Error(t, err)
}
