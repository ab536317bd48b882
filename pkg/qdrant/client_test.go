package qdrant_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"repo-autobot/pkg/qdrant"
)

func TestQdrantClient(t *testing.T) {
	var (
		created      []string
		lastDelete   map[string]any
		lastSearch   qdrant.SearchRequest
		lastUpsertID string
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("api-key") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet && path == "/collections/existing":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"result":{"status":"green"}}`))

		case r.Method == http.MethodGet && strings.HasPrefix(path, "/collections/"):
			w.WriteHeader(http.StatusNotFound)

		case r.Method == http.MethodPut && strings.HasSuffix(path, "/points"):
			if r.URL.Query().Get("wait") != "true" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			var req qdrant.UpsertPointsRequest
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.Points) > 0 {
				lastUpsertID = req.Points[0].ID
				if val, ok := req.Points[0].Payload["cause_500"]; ok && val == true {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
			}
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodPut && strings.HasPrefix(path, "/collections/"):
			created = append(created, strings.TrimPrefix(path, "/collections/"))
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/points/search"):
			json.NewDecoder(r.Body).Decode(&lastSearch)
			if lastSearch.Limit == 999 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{
				"result": [
					{"id": "6f1c0a6e-4c7e-5b5a-9f0e-2d3c4b5a6978", "score": 0.95, "payload": {"path": "main.go"}}
				],
				"status": "ok"
			}`))

		case r.Method == http.MethodPost && strings.HasSuffix(path, "/points/delete"):
			lastDelete = map[string]any{}
			json.NewDecoder(r.Body).Decode(&lastDelete)
			w.WriteHeader(http.StatusOK)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := qdrant.NewClient(ts.URL + "/").WithAPIKey("secret")
	ctx := context.Background()

	t.Run("EnsureCollection creates missing", func(t *testing.T) {
		created = nil
		err := client.EnsureCollection(ctx, qdrant.CreateCollectionRequest{
			Name:    "repos",
			Vectors: qdrant.VectorConfig{Size: 1024, Distance: "Cosine"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created) != 1 || created[0] != "repos" {
			t.Errorf("created = %v, want [repos]", created)
		}
	})

	t.Run("EnsureCollection keeps existing", func(t *testing.T) {
		created = nil
		if err := client.EnsureCollection(ctx, qdrant.CreateCollectionRequest{Name: "existing"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created) != 0 {
			t.Errorf("unexpected create: %v", created)
		}
	})

	t.Run("UpsertPoints Success", func(t *testing.T) {
		err := client.UpsertPoints(ctx, "repos", qdrant.UpsertPointsRequest{
			Points: []qdrant.Point{{ID: "abc", Payload: map[string]any{"key": "val"}, Vector: []float32{0.1}}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lastUpsertID != "abc" {
			t.Errorf("upserted id = %q", lastUpsertID)
		}
	})

	t.Run("UpsertPoints Error", func(t *testing.T) {
		err := client.UpsertPoints(ctx, "repos", qdrant.UpsertPointsRequest{
			Points: []qdrant.Point{{ID: "abc", Payload: map[string]any{"cause_500": true}}},
		})
		if err == nil || !strings.Contains(err.Error(), "500") {
			t.Fatalf("expected 500 error, got %v", err)
		}
	})

	t.Run("SearchPoints with filter", func(t *testing.T) {
		filter := qdrant.MatchField("repo_key", "acme-widgets")
		resp, err := client.SearchPoints(ctx, "repos", qdrant.SearchRequest{
			Vector: []float32{0.1},
			Limit:  5,
			Filter: &filter,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Result) != 1 || resp.Result[0].Payload["path"] != "main.go" {
			t.Errorf("unexpected search results: %+v", resp)
		}
		if lastSearch.Filter == nil || lastSearch.Filter.Must[0].Match.Value != "acme-widgets" {
			t.Errorf("filter not sent: %+v", lastSearch.Filter)
		}
	})

	t.Run("SearchPoints Error", func(t *testing.T) {
		if _, err := client.SearchPoints(ctx, "repos", qdrant.SearchRequest{Limit: 999}); err == nil {
			t.Fatal("expected error from 500 response")
		}
	})

	t.Run("DeletePoints", func(t *testing.T) {
		if err := client.DeletePoints(ctx, "repos", []string{"a", "b"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pts, _ := lastDelete["points"].([]any); len(pts) != 2 {
			t.Errorf("delete body = %v", lastDelete)
		}
	})

	t.Run("DeleteByFilter", func(t *testing.T) {
		if err := client.DeleteByFilter(ctx, "repos", qdrant.MatchField("repo_key", "acme-widgets")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		filter, _ := lastDelete["filter"].(map[string]any)
		must, _ := filter["must"].([]any)
		if len(must) != 1 {
			t.Fatalf("delete body = %v", lastDelete)
		}
		cond := must[0].(map[string]any)
		if cond["key"] != "repo_key" {
			t.Errorf("condition = %v", cond)
		}
	})

	t.Run("Context Cancelation Error", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if err := client.CreateCollection(cctx, qdrant.CreateCollectionRequest{Name: "test"}); err == nil {
			t.Errorf("expected error on canceled context")
		}
		if _, err := client.SearchPoints(cctx, "test", qdrant.SearchRequest{}); err == nil {
			t.Errorf("expected error on canceled context")
		}
	})

	t.Run("Wrong api key", func(t *testing.T) {
		err := qdrant.NewClient(ts.URL).CreateCollection(ctx, qdrant.CreateCollectionRequest{Name: "x"})
		if err == nil || errors.Is(err, qdrant.ErrNotFound) {
			t.Errorf("expected 400 error, got %v", err)
		}
	})
}
