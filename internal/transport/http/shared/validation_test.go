package shared

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Title    string `json:"title" validate:"required,max=10"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestStructUsesJSONNamesAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Priority: "urgent", Email: "nope"})

	require.True(t, v.HasIssues())
	assert.Equal(t, []ValidationIssue{
		{Field: "email", Reason: "must be a valid email address"},
		{Field: "priority", Reason: "must be one of: low, medium, high"},
		{Field: "title", Reason: "is required"},
	}, v.Issues())
}

func TestStructPassesValidPayload(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Title: "ok", Priority: "low"})
	assert.False(t, v.HasIssues())
	assert.Nil(t, v.Issues())
}

func TestDateHelpers(t *testing.T) {
	v := NewValidator()
	from, ok := v.Date("fromDate", "2024-02-20")
	require.True(t, ok)
	to, ok := v.Date("toDate", "2024-02-15T10:00:00Z")
	require.True(t, ok)
	_, ok = v.Date("other", "20/02/2024")
	assert.False(t, ok)
	v.DateOrder("fromDate", from, "toDate", to)

	fields := map[string]bool{}
	for _, issue := range v.Issues() {
		fields[issue.Field] = true
	}
	assert.True(t, fields["fromDate"])
	assert.True(t, fields["toDate"])
	assert.True(t, fields["other"])
}

func TestDateSpan(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	v := NewValidator()
	v.DateSpan("fromDate", from, "toDate", from.AddDate(0, 0, 365), 366)
	assert.False(t, v.HasIssues())

	v.DateSpan("fromDate", from, "toDate", time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), 366)
	require.Len(t, v.Issues(), 1)
	assert.Equal(t, ValidationIssue{Field: "toDate", Reason: "must be within 366 days of fromDate"}, v.Issues()[0])
}

func TestRejectWritesEnvelope(t *testing.T) {
	v := NewValidator()
	v.Add("email", "is required")
	rec := httptest.NewRecorder()
	assert.True(t, v.Reject(rec, "req-9"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"validation_error"`)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
}

func TestDecodeJSONTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"title":"`+string(bytes.Repeat([]byte("a"), 64))+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var payload samplePayload
	assert.False(t, DecodeJSON(rec, req, &payload, ""))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestParsePagination(t *testing.T) {
	v := NewValidator()
	page := ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=500&offset=3", nil), v, 50, 200)
	assert.Equal(t, Pagination{Limit: 200, Offset: 3}, page)
	assert.False(t, v.HasIssues())

	page = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=x&offset=-1", nil), v, 50, 200)
	assert.Equal(t, Pagination{Limit: 50}, page)
	assert.Len(t, v.Issues(), 2)
}
