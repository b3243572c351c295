package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noiflow/internal/config"
	"noiflow/internal/service"
	"noiflow/mocks"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	extractor := new(mocks.MockSemanticExtractor)
	cfg := config.ExtractionConfig{
		MaxAttempts:          1,
		BackoffBase:          time.Millisecond,
		RatePerSecond:        10000,
		RateBurst:            100,
		MaterialityThreshold: 100.0,
		MinMaterialValues:    3,
		ConsistencyTolerance: 1.00,
	}
	extractionSvc := service.NewExtractionService(extractor, cfg)
	batchSvc := service.NewBatchService(extractionSvc, 2)
	h := NewExtractionHandler(extractionSvc, batchSvc, config.UploadConfig{MaxFileSizeMB: 1})

	r := gin.New()
	r.POST("/api/v1/extractions", h.Extract)
	r.POST("/api/v1/extractions/batch", h.ExtractBatch)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestExtract_MissingFile(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_DOCUMENT", resp.Error.Code)
}

func TestExtract_InvalidRole(t *testing.T) {
	r := testRouter(t)

	body, contentType := multipartBody(t, "file", "doc.csv", []byte("a,b\n1,2\n"), map[string]string{"role": "sideways"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ROLE", resp.Error.Code)
}

func TestExtract_NoFinancialContentStatus(t *testing.T) {
	r := testRouter(t)

	// A readable document with nothing financial in it still returns 200:
	// the rejection is a pipeline status, not a transport error.
	body, contentType := multipartBody(t, "file", "notes.txt", []byte("site visit notes, nothing to report"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status     string `json:"status"`
			Confidence string `json:"overall_confidence"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "no_financial_content", resp.Data.Status)
	assert.Equal(t, "UNCERTAIN", resp.Data.Confidence)
}

func TestExtractBatch_UnknownRoleField(t *testing.T) {
	r := testRouter(t)

	body, contentType := multipartBody(t, "sideways", "doc.csv", []byte("a,b\n1,2\n"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extractions/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHealthHandler()
	r.GET("/healthz", h.Liveness)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
