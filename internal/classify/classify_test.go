package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifyUnconfigured(t *testing.T) {
	s := NewService(Config{})

	if s.Configured() {
		t.Error("expected unconfigured")
	}
	result, err := s.Classify(context.Background(), "plastic", "2 bags")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/classify" {
			t.Errorf("path = %q, want /v1/classify", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}

		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.WasteType != "plastic" {
			t.Errorf("waste_type = %q, want plastic", req.WasteType)
		}

		json.NewEncoder(w).Encode(Result{Analysis: "PET bottles, widely recyclable", Recyclability: 0.9})
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, APIKey: "test-key"})
	result, err := s.Classify(context.Background(), "plastic", "2 bags")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Recyclability != 0.9 {
		t.Errorf("recyclability = %v, want 0.9", result.Recyclability)
	}
	if result.Analysis == "" {
		t.Error("expected analysis text")
	}
}

func TestClassifyClampsRecyclability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Analysis: "x", Recyclability: 1.7})
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, APIKey: "k"})
	result, err := s.Classify(context.Background(), "metal", "1 can")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Recyclability != 1 {
		t.Errorf("recyclability = %v, want clamped to 1", result.Recyclability)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewService(Config{BaseURL: srv.URL, APIKey: "k"})
	if _, err := s.Classify(context.Background(), "glass", "3 jars"); err == nil {
		t.Error("expected error on upstream failure")
	}
}
