package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	rec := httptest.NewRecorder()
	ok := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x","userId":"ignored"}`)), &dst)
	assert.True(t, ok)
	assert.Equal(t, "x", dst.Title)

	rec = httptest.NewRecorder()
	ok = decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid request body"}`, rec.Body.String())

	big := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec = httptest.NewRecorder()
	ok = decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestJournalRequestValidate(t *testing.T) {
	cat := "  Work  "
	req := JournalRequest{Title: "  Standup  ", Content: `<p>Discussed the roadmap</p><img src=x onerror=alert(1)>`, Category: &cat}

	fe := req.validate()
	assert.True(t, fe.Empty(), fe)
	assert.Equal(t, "Standup", req.Title)
	assert.Equal(t, "Work", *req.Category)
	assert.NotContains(t, req.Content, "onerror")

	req = JournalRequest{Title: "ab", Content: "short"}
	fe = req.validate()
	assert.Equal(t, "Title must be at least 3 characters long", fe.First(journalFieldOrder...))
	assert.Len(t, fe, 2)
}

func TestWriteValidation(t *testing.T) {
	fe := utils.FieldErrors{}
	fe.Add(&utils.ValidationError{Field: "content", Message: "Content must be at least 10 characters long"})

	rec := httptest.NewRecorder()
	writeValidation(rec, fe, journalFieldOrder...)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Content must be at least 10 characters long","errors":{"content":"Content must be at least 10 characters long"}}`, rec.Body.String())
}
