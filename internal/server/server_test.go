package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KaramelBytes/datasweeper/internal/export"
	"github.com/KaramelBytes/datasweeper/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "id,amt\n1,10\n1,10\n2,\n"

func upload(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(Options{}).Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func TestHealth(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestConvertCleansAndReturnsSpreadsheet(t *testing.T) {
	req := upload(t, "/api/convert", "sales.csv", []byte(salesCSV), map[string]string{
		"to": "xlsx", "dedupe": "true", "fill_missing": "on",
	})
	rec := serve(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.Spreadsheet.ContentType(), rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=sales.xlsx`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Session-Id"))

	back, err := loader.Load("sales.xlsx", rec.Body.Bytes(), loader.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, back.NumRows())
	amt, _ := back.Column("amt")
	assert.Equal(t, "10", amt.Cells[1].Text)
}

func TestConvertSelectsColumns(t *testing.T) {
	req := upload(t, "/api/convert", "sales.csv", []byte(salesCSV), map[string]string{"columns": "amt, id"})
	rec := serve(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "amt,id\n10,1\n10,1\n,2\n", rec.Body.String())
}

func TestConvertErrors(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		status   int
		code     string
	}{
		{"unsupported", "notes.txt", "hello", nil, http.StatusUnsupportedMediaType, "unsupported_format"},
		{"malformed", "bad.csv", "a,b\n1,2,3\n", nil, http.StatusUnprocessableEntity, "parse_error"},
		{"unknown column", "sales.csv", salesCSV, map[string]string{"columns": "nope"}, http.StatusBadRequest, "unknown_column"},
		{"duplicate column", "sales.csv", salesCSV, map[string]string{"columns": "id,id"}, http.StatusBadRequest, "duplicate_column"},
		{"bad target", "sales.csv", salesCSV, map[string]string{"to": "pdf"}, http.StatusBadRequest, "bad_request"},
		{"bad bool", "sales.csv", salesCSV, map[string]string{"clean": "maybe"}, http.StatusBadRequest, "bad_request"},
		{"no file", "", "", map[string]string{"to": "csv"}, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, upload(t, "/api/convert", tc.filename, []byte(tc.content), tc.fields))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			e := decodeError(t, rec)
			assert.Equal(t, tc.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestPreviewReturnsSummary(t *testing.T) {
	req := upload(t, "/api/preview", "sales.csv", []byte(salesCSV), map[string]string{"rows": "2", "chart": "true"})
	rec := serve(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Name       string `json:"name"`
		Rows       int    `json:"rows"`
		Duplicates int    `json:"duplicate_rows"`
		Columns    []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
		Samples [][]string `json:"samples"`
		Chart   string     `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sales.csv", got.Name)
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, 1, got.Duplicates)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "numeric", got.Columns[1].Type)
	assert.Len(t, got.Samples, 2)
	assert.Contains(t, got.Chart, "amt")
}

func TestPreviewRejectsBadRows(t *testing.T) {
	rec := serve(t, upload(t, "/api/preview", "sales.csv", []byte(salesCSV), map[string]string{"rows": "-1"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := upload(t, "/api/convert", "big.csv", bytes.Repeat([]byte("a\n"), 4096), nil)
	New(Options{MaxUploadBytes: 1024}).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}
