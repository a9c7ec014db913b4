package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{
		Endpoint:          srv.URL,
		Model:             "test-model",
		Dimensions:        3,
		RequestsPerSecond: -1, // no pacing in tests
	})
}

func TestParseVector_KnownShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float32
	}{
		{"flat embedding", `{"embedding":[0.1,0.2,0.3]}`, []float32{0.1, 0.2, 0.3}},
		{"embeddings list", `{"embeddings":[[1,2],[3,4]]}`, []float32{1, 2}},
		{"object list", `[{"embedding":[5,6,7]}]`, []float32{5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVector([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVector_UnknownShapes(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"embedding":[]}`,
		`{"embeddings":[]}`,
		`[]`,
		`[{"vector":[1,2]}]`,
		`{"data":"nope"}`,
		`not json`,
	}

	for _, body := range bodies {
		_, err := parseVector([]byte(body))
		require.Error(t, err, "body %q must not parse", body)
		assert.True(t, errors.Is(err, domain.ErrEmbeddingService))
	}
}

func TestEmbed_SendsModelAndInput(t *testing.T) {
	var gotReq embeddingRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"embedding":[1,2,3]}`)
	})

	vec, err := svc.Embed(context.Background(), "remote access controls")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, "remote access controls", gotReq.Input)
}

func TestEmbed_ErrorStatus(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingService))
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Derive the vector from the input so order mixups are visible.
		fmt.Fprintf(w, `{"embedding":[%d]}`, len(req.Input))
	})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, []float32{float32(len(text))}, vectors[i])
	}
}

func TestEmbedBatch_FailureFailsBatch(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls.Add(1)
		if req.Input == "poison" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"embedding":[1]}`)
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"ok", "poison", "ok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingService))
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for empty batch")
	})

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultEndpoint, svc.endpoint)
	assert.Equal(t, DefaultModel, svc.model)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultConcurrency, svc.concurrency)
	assert.NotNil(t, svc.limiter)
	assert.NoError(t, svc.Close())
}
