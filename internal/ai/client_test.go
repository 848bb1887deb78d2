package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScoreEssay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/score", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req ScoreRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Describe the chart.", req.Prompt)
		assert.NotEmpty(t, req.Essay)

		json.NewEncoder(w).Encode(ScoreResponse{Score: 7.5, Feedback: "Good cohesion."})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", testLogger())
	resp, err := client.ScoreEssay(context.Background(), &ScoreRequest{
		Prompt: "Describe the chart.",
		Essay:  "The chart shows a steady rise in rail usage over the decade.",
	})

	assert.NoError(t, err)
	assert.Equal(t, 7.5, resp.Score)
	assert.Equal(t, "Good cohesion.", resp.Feedback)
}

func TestScoreEssay_NoAPIKeyOmitsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(ScoreResponse{Score: 6})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.ScoreEssay(context.Background(), &ScoreRequest{Essay: "essay"})
	assert.NoError(t, err)
}

func TestScoreEssay_BandOutsideScale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ScoreResponse{Score: 11})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	resp, err := client.ScoreEssay(context.Background(), &ScoreRequest{Essay: "essay"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "outside the 0-9 scale")
}

func TestScoreEssay_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream model unavailable"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.ScoreEssay(context.Background(), &ScoreRequest{Essay: "essay"})

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "upstream model unavailable")
}

func TestScoreEssay_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.ScoreEssay(context.Background(), &ScoreRequest{Essay: "essay"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed ai scorer response")
}

func TestScoreEssay_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.ScoreEssay(ctx, &ScoreRequest{Essay: "essay"})
	assert.Error(t, err)
}

func TestSimilarity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/similarity", r.URL.Path)

		var req SimilarityRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "the station is crowded", req.Reference)
		assert.Equal(t, "the station is busy", req.Candidate)

		json.NewEncoder(w).Encode(SimilarityResponse{Similarity: 0.87})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	resp, err := client.Similarity(context.Background(), &SimilarityRequest{
		Reference: "the station is crowded",
		Candidate: "the station is busy",
	})

	assert.NoError(t, err)
	assert.Equal(t, 0.87, resp.Similarity)
}
