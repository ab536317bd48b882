package voyage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"repo-autobot/pkg/voyage"
)

func TestVoyageClient(t *testing.T) {
	var lastInputType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-voyage-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req voyage.EmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		lastInputType = req.InputType

		if len(req.Input) > 0 && req.Input[0] == "cause_500" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}

		// Reply out of order to exercise index mapping.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"data": [
				{"embedding": [0.4, 0.5], "index": 1},
				{"embedding": [0.1, 0.2], "index": 0}
			]
		}`))
	}))
	defer ts.Close()

	client, _ := voyage.New("test-voyage-key")
	client.WithBaseURL(ts.URL).WithModel("custom-model")

	t.Run("Success Flow", func(t *testing.T) {
		emb, err := client.Embed(context.Background(), []string{"first", "second"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(emb) != 2 {
			t.Fatalf("expected 2 embeddings, got %d", len(emb))
		}
		if emb[0][0] != 0.1 || emb[1][0] != 0.4 {
			t.Errorf("embeddings not ordered by index: %v", emb)
		}
		if lastInputType != voyage.InputTypeDocument {
			t.Errorf("input_type = %q, want document", lastInputType)
		}
	})

	t.Run("Query Input Type", func(t *testing.T) {
		if _, err := client.EmbedAs(context.Background(), []string{"a", "b"}, voyage.InputTypeQuery); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lastInputType != voyage.InputTypeQuery {
			t.Errorf("input_type = %q, want query", lastInputType)
		}
	})

	t.Run("Count Mismatch", func(t *testing.T) {
		if _, err := client.Embed(context.Background(), []string{"only one"}); err == nil {
			t.Fatal("expected error when response count differs from input count")
		}
	})

	t.Run("Server Error Flow", func(t *testing.T) {
		_, err := client.Embed(context.Background(), []string{"cause_500"})
		if err == nil || !strings.Contains(err.Error(), "overloaded") {
			t.Fatalf("expected API error message, got %v", err)
		}
	})

	t.Run("Unauthorized Error Flow", func(t *testing.T) {
		badClient, _ := voyage.New("bad-key")
		badClient.WithBaseURL(ts.URL)
		_, err := badClient.Embed(context.Background(), []string{"Hello world"})
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Fatalf("expected 401 error, got %v", err)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if _, err := client.Embed(context.Background(), nil); err == nil {
			t.Fatal("expected error for empty input")
		}
	})

	t.Run("Missing Key", func(t *testing.T) {
		if _, err := voyage.New(""); err == nil {
			t.Fatal("expected error for missing key")
		}
	})
}
