package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "explicit", query: "page=3&pageSize=50", wantPage: 3, wantPageSize: 50},
		{name: "zero page", query: "page=0", wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "negative page", query: "page=-2", wantPage: 1, wantPageSize: DefaultPageSize},
		{name: "oversized page size is capped", query: "pageSize=1000", wantPage: 1, wantPageSize: MaxPageSize},
		{name: "garbage input", query: "page=abc&pageSize=xyz", wantPage: 1, wantPageSize: DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := pageParams(testContext(tt.query))
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestCreatePaginatedResponse(t *testing.T) {
	c := testContext("page=2&pageSize=10")
	data := []string{"a", "b"}

	resp := CreatePaginatedResponse(c, data, 25)
	assert.Equal(t, int64(25), resp.TotalRows)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, 10, resp.PageSize)
	assert.Equal(t, data, resp.Data)
}

func TestCreatePaginatedResponseEmpty(t *testing.T) {
	resp := CreatePaginatedResponse(testContext(""), nil, 0)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
}
