package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpMocks "synthkit/internal/http/mocks"
	"synthkit/internal/mocks"
	"synthkit/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *mocks.MockLogger {
	mockLogger := &mocks.MockLogger{}
	mockLogger.On("LogInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	mockLogger.On("LogSuccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	mockLogger.On("LogError", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	return mockLogger
}

func newGenerateRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	return httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(encoded))
}

func TestHandler_Generate_Success(t *testing.T) {
	// Arrange
	mockSynthesis := &httpMocks.MockSynthesisService{}
	mockCache := &mocks.MockCache{}

	handler := NewHandler(mockSynthesis, mockCache, newTestLogger())

	expected := &models.GenerationResult{
		Identifier:    "user-42",
		Generator:     "sample",
		Seed:          12345,
		Payload:       map[string]interface{}{"value": float64(17)},
		Deterministic: true,
		Cached:        false,
		Timestamp:     time.Now().UTC(),
	}

	mockSynthesis.On("Synthesize", mock.Anything, "sample", "user-42", mock.Anything, time.Duration(0)).Return(expected, nil)

	req := newGenerateRequest(t, models.GenerateRequest{Generator: "sample", Identifier: "user-42"})
	w := httptest.NewRecorder()

	// Act
	handler.Generate(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var response models.GenerationResult
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "user-42", response.Identifier)
	assert.Equal(t, "sample", response.Generator)
	assert.True(t, response.Deterministic)
	assert.False(t, response.Cached)

	mockSynthesis.AssertExpectations(t)
}

func TestHandler_Generate_TTLForwarded(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	mockCache := &mocks.MockCache{}

	handler := NewHandler(mockSynthesis, mockCache, newTestLogger())

	expected := &models.GenerationResult{Identifier: "user-42", Generator: "sample"}
	mockSynthesis.On("Synthesize", mock.Anything, "sample", "user-42", mock.Anything, 90*time.Second).Return(expected, nil)

	req := newGenerateRequest(t, models.GenerateRequest{Generator: "sample", Identifier: "user-42", TTLSeconds: 90})
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSynthesis.AssertExpectations(t)
}

func TestHandler_Generate_MissingGenerator(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	req := newGenerateRequest(t, models.GenerateRequest{Identifier: "user-42"})
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "generator is required", response.Error)

	mockSynthesis.AssertNotCalled(t, "Synthesize")
}

func TestHandler_Generate_MissingIdentifier(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	req := newGenerateRequest(t, models.GenerateRequest{Generator: "sample"})
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSynthesis.AssertNotCalled(t, "Synthesize")
}

func TestHandler_Generate_InvalidBody(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSynthesis.AssertNotCalled(t, "Synthesize")
}

func TestHandler_Generate_UnknownGenerator(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	mockSynthesis.On("Synthesize", mock.Anything, "nope", "user-42", mock.Anything, time.Duration(0)).
		Return(nil, models.ErrUnknownGenerator)

	req := newGenerateRequest(t, models.GenerateRequest{Generator: "nope", Identifier: "user-42"})
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Generate_InternalError(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	serviceError := models.NewGenerationError("user-42", "generation function failed", errors.New("boom"))
	mockSynthesis.On("Synthesize", mock.Anything, "sample", "user-42", mock.Anything, time.Duration(0)).
		Return(nil, serviceError)

	req := newGenerateRequest(t, models.GenerateRequest{Generator: "sample", Identifier: "user-42"})
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_BatchGenerate_PartialSuccess(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	response := &models.BatchGenerateResponse{
		Results: []models.IdentifierResult{
			{Identifier: "alpha", Success: true},
			{Identifier: "beta", Success: false, Error: "boom"},
		},
		Summary:   models.BatchSummary{Total: 2, Succeeded: 1, Failed: 1},
		Timestamp: time.Now().UTC(),
	}

	mockSynthesis.On("SynthesizeBatch", mock.Anything, "sample", []string{"alpha", "beta"}, mock.Anything).
		Return(response, nil)

	body := models.BatchGenerateRequest{Generator: "sample", Identifiers: []string{"alpha", "beta"}}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/batch-generate", bytes.NewReader(encoded))
	w := httptest.NewRecorder()

	handler.BatchGenerate(w, req)

	// Partial success maps to 207 Multi-Status
	assert.Equal(t, http.StatusMultiStatus, w.Code)

	var decoded models.BatchGenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Summary.Total)

	mockSynthesis.AssertExpectations(t)
}

func TestHandler_BatchGenerate_EmptyIdentifiers(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	body := models.BatchGenerateRequest{Generator: "sample"}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/batch-generate", bytes.NewReader(encoded))
	w := httptest.NewRecorder()

	handler.BatchGenerate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSynthesis.AssertNotCalled(t, "SynthesizeBatch")
}

func TestHandler_BatchGenerate_TooManyIdentifiers(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	identifiers := make([]string, maxBatchIdentifiers+1)
	for i := range identifiers {
		identifiers[i] = "id"
	}

	body := models.BatchGenerateRequest{Generator: "sample", Identifiers: identifiers}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/batch-generate", bytes.NewReader(encoded))
	w := httptest.NewRecorder()

	handler.BatchGenerate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSynthesis.AssertNotCalled(t, "SynthesizeBatch")
}

func TestHandler_Fuse_Success(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	sources := [][]models.Record{
		{{"email": "a@example.com", "name": "A"}},
		{{"email": "a@example.com", "city": "Berlin"}},
	}
	expected := &models.FusionResult{
		Records:   []models.Record{{"email": "a@example.com", "name": "A"}},
		Report:    models.FusionReport{MergedCount: 1, DuplicatesRemoved: 1},
		Timestamp: time.Now().UTC(),
	}

	mockSynthesis.On("FuseSources", mock.Anything, sources, "email").Return(expected, nil)

	body := models.FusionRequest{KeyField: "email", Sources: sources}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/fusion", bytes.NewReader(encoded))
	w := httptest.NewRecorder()

	handler.Fuse(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var decoded models.FusionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Report.MergedCount)

	mockSynthesis.AssertExpectations(t)
}

func TestHandler_Fuse_MissingKeyField(t *testing.T) {
	mockSynthesis := &httpMocks.MockSynthesisService{}
	handler := NewHandler(mockSynthesis, &mocks.MockCache{}, newTestLogger())

	mockSynthesis.On("FuseSources", mock.Anything, mock.Anything, "").Return(nil, models.ErrMissingKeyField)

	body := models.FusionRequest{Sources: [][]models.Record{{{"a": 1}}}}
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/fusion", bytes.NewReader(encoded))
	w := httptest.NewRecorder()

	handler.Fuse(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_InvalidateCacheKey(t *testing.T) {
	mockCache := &mocks.MockCache{}
	handler := NewHandler(&httpMocks.MockSynthesisService{}, mockCache, newTestLogger())

	mockCache.On("Delete", mock.Anything, "result:abc123").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/cache/result:abc123", nil)
	req = mux.SetURLVars(req, map[string]string{"key": "result:abc123"})
	w := httptest.NewRecorder()

	handler.InvalidateCacheKey(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response CacheOpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Removed)

	mockCache.AssertExpectations(t)
}

func TestHandler_InvalidateCachePattern(t *testing.T) {
	mockCache := &mocks.MockCache{}
	handler := NewHandler(&httpMocks.MockSynthesisService{}, mockCache, newTestLogger())

	mockCache.On("DeletePattern", mock.Anything, "result:").Return(3, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/cache?pattern=result:", nil)
	w := httptest.NewRecorder()

	handler.InvalidateCachePattern(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response CacheOpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Removed)

	mockCache.AssertExpectations(t)
}

func TestHandler_InvalidateCachePattern_MissingPattern(t *testing.T) {
	mockCache := &mocks.MockCache{}
	handler := NewHandler(&httpMocks.MockSynthesisService{}, mockCache, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/cache", nil)
	w := httptest.NewRecorder()

	handler.InvalidateCachePattern(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockCache.AssertNotCalled(t, "DeletePattern")
}

func TestHandler_CleanupCache(t *testing.T) {
	mockCache := &mocks.MockCache{}
	handler := NewHandler(&httpMocks.MockSynthesisService{}, mockCache, newTestLogger())

	mockCache.On("PurgeExpired", mock.Anything).Return(7, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cache/cleanup", nil)
	w := httptest.NewRecorder()

	handler.CleanupCache(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response CacheOpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 7, response.Removed)

	mockCache.AssertExpectations(t)
}

func TestHandler_HealthCheck(t *testing.T) {
	handler := NewHandler(&httpMocks.MockSynthesisService{}, &mocks.MockCache{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
}
