// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkaiwen/comicshelf/pkg/pagination"
)

/*
TestFromRequest verifies query parsing, clamping, and opt-in detection.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		page      int
		limit     int
		requested bool
	}{
		{"no_params", "/listComics", 1, 20, false},
		{"explicit", "/listComics?page=3&limit=10", 3, 10, true},
		{"limit_only", "/listComics?limit=5", 1, 5, true},
		{"clamped_limit", "/listComics?page=1&limit=9999", 1, 20, true},
		{"garbage", "/listComics?page=abc&limit=-2", 1, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := pagination.FromRequest(r)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.requested, p.Requested)
		})
	}
}

/*
TestOffset checks the offset arithmetic.
*/
func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
}
