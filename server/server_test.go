package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reoring/flatcsv"
	"github.com/reoring/flatcsv/export/xlsx"
	ginmw "github.com/reoring/flatcsv/middleware/gin"
)

var fixedNow = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opt flatcsv.Options) *Server {
	t.Helper()
	s, err := New(Config{GinMode: "test", Options: opt}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func do(s *Server, method, target, body string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type errorResponse struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Offset  *int64 `json:"offset"`
		Path    string `json:"path"`
	} `json:"error"`
}

func TestConvert_JSON(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodPost, "/api/convert", `{"pessoas":[{"nome":"A","idade":3},{"nome":"B"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Headers []string         `json:"headers"`
		Rows    []map[string]any `json:"rows"`
		CSV     string           `json:"csv"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"idade", "nome"}, got.Headers)
	assert.Equal(t, "idade;nome\n3;A\n;B", got.CSV)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, 3.0, got.Rows[0]["idade"])
	assert.NotEmpty(t, rec.Header().Get(ginmw.RequestIDHeader))
}

func TestConvert_CSVAttachment(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{Delimiter: ','})
	rec := do(s, http.MethodPost, "/api/convert?format=csv", `[{"a":"x,y"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dados-2024-03-09.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a\n\"x,y\"", rec.Body.String())
}

func TestConvert_XLSXAttachment(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodPost, "/api/convert?format=xlsx", flatcsv.SampleJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsx.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dados-2024-03-09.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsx.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestConvert_XLSXOverLimit(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodPost, "/api/convert?format=xlsx", `[{"a":"`+strings.Repeat("x", excelize.TotalCellChars+1)+`"}]`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, KindXLSXLimit, er.Error.Kind)
	assert.Contains(t, er.Error.Message, "row 1")

	rec = do(s, http.MethodPost, "/api/convert?format=csv", `[{"a":"`+strings.Repeat("x", excelize.TotalCellChars+1)+`"}]`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvert_Errors(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	cases := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"empty", "  ", http.StatusBadRequest, "empty-input"},
		{"syntax", "{not json", http.StatusBadRequest, "invalid-syntax"},
		{"no data", "42", http.StatusUnprocessableEntity, "no-data-found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/convert", tc.body)
			require.Equal(t, tc.status, rec.Code)
			var er errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.Equal(t, tc.kind, er.Error.Kind)
			assert.NotEmpty(t, er.Error.Message)
		})
	}
}

func TestConvert_ErrorCarriesPathAndOffset(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{MaxDepth: 2, MaxBytes: 1 << 10})
	rec := do(s, http.MethodPost, "/api/convert", `{"a":{"b":{"c":1}}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "invalid-syntax", er.Error.Kind)
	assert.Equal(t, "/a/b", er.Error.Path)
	require.NotNil(t, er.Error.Offset)

	rec = do(s, http.MethodPost, "/api/convert", `{"a":}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	require.NotNil(t, er.Error.Offset)
}

func TestConvert_Localized(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodPost, "/api/convert", "", "Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")
	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "Entrada JSON vazia. Por favor, cole seus dados JSON.", er.Error.Message)

	rec = do(s, http.MethodPost, "/api/convert?lang=en", "", "Accept-Language", "pt-BR")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "empty JSON input; paste your JSON data", er.Error.Message)
}

func TestConvert_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{MaxBytes: 16})
	rec := do(s, http.MethodPost, "/api/convert", `[{"a":"`+strings.Repeat("x", 64)+`"}]`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var er errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
	assert.Equal(t, "too-large", er.Error.Kind)
}

func TestConvert_UnknownFormat(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodPost, "/api/convert?format=pdf", `[{"a":1}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodGet, "/healthz", "", ginmw.RequestIDHeader, "abc-123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(ginmw.RequestIDHeader))
}

func TestSampleAndMetrics(t *testing.T) {
	s := newTestServer(t, flatcsv.Options{})
	rec := do(s, http.MethodGet, "/api/sample", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, flatcsv.SampleJSON, rec.Body.String())

	do(s, http.MethodPost, "/api/convert", rec.Body.String())
	do(s, http.MethodPost, "/api/convert", "42")

	rec = do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `flatcsv_conversions_total{outcome="ok",source="http"} 1`)
	assert.Contains(t, body, `flatcsv_conversions_total{outcome="no-data-found",source="http"} 1`)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s, err := New(Config{Addr: addr, GinMode: "test", ShutdownTimeout: time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
