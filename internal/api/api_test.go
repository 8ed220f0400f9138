package api_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"plannercheck/internal/api"
)

func TestStatusOK(t *testing.T) {
	assert.True(t, api.StatusOK(200))
	assert.True(t, api.StatusOK(201))
	assert.False(t, api.StatusOK(204))
	assert.False(t, api.StatusOK(401))
	assert.False(t, api.StatusOK(500))
}

func TestDescribe_TruncatesBody(t *testing.T) {
	body := strings.Repeat("x", 250)
	err := fmt.Errorf("create vision: %w", &googleapi.Error{Code: 500, Body: body})

	got := api.Describe(err)

	assert.Equal(t, "HTTP 500: "+strings.Repeat("x", 100), got)
}

func TestDescribe_EmptyBodyAndPlainErrors(t *testing.T) {
	assert.Equal(t, "HTTP 404", api.Describe(&googleapi.Error{Code: 404}))
	assert.Equal(t, "request timed out", api.Describe(api.ErrTimeout))
	assert.Equal(t, "boom", api.Describe(errors.New("boom")))
	assert.Equal(t, "", api.Describe(nil))
}

func TestTruncate_Runes(t *testing.T) {
	assert.Equal(t, "✅✅", api.Truncate("✅✅✅", 2))
	assert.Equal(t, "short", api.Truncate("short", 100))
}

func TestRecords(t *testing.T) {
	tests := []struct {
		name string
		body any
		want int
	}{
		{"array", []any{map[string]any{"_id": "1"}, map[string]any{"_id": "2"}}, 2},
		{"empty array", []any{}, 0},
		{"data envelope", map[string]any{"success": true, "data": []any{map[string]any{}}}, 1},
		{"single object", map[string]any{"_id": "only"}, 1},
		{"empty object", map[string]any{}, 0},
		{"scalar", "ok", 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, api.Records(tt.body), tt.want)
		})
	}
}

func TestRecords_WrapsScalarItems(t *testing.T) {
	recs := api.Records([]any{"a"})
	assert.Equal(t, "a", recs[0]["value"])
}
