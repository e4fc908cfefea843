package testctl

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shufflerd/pkg/types"
)

func fakeDaemon(t *testing.T, w, h int, metrics string) *httptest.Server {
	t.Helper()
	var rotations atomic.Uint64
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(rw http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(rw).Encode(types.StatusResponse{State: "running", Rotations: rotations.Add(1) - 1})
	})
	mux.HandleFunc("/frame.png", func(rw http.ResponseWriter, r *http.Request) {
		_ = png.Encode(rw, image.NewRGBA(image.Rect(0, 0, w, h)))
	})
	mux.HandleFunc("/params", func(rw http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(rw).Encode(types.Params{Prompt: "p"})
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) { _, _ = rw.Write([]byte(metrics)) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckEndpoints(t *testing.T) {
	srv := fakeDaemon(t, 8, 4, "shufflerd_rotations_total 3\n")
	opts := SmokeOptions{Width: 8, Height: 4, Timeout: 2 * time.Second}
	if err := checkEndpoints(context.Background(), srv.URL, opts); err != nil {
		t.Fatalf("checkEndpoints: %v", err)
	}
}

func TestCheckEndpoints_Failures(t *testing.T) {
	opts := SmokeOptions{Width: 8, Height: 4, Timeout: 2 * time.Second}
	srv := fakeDaemon(t, 16, 4, "shufflerd_rotations_total 3\n")
	if err := checkEndpoints(context.Background(), srv.URL, opts); err == nil || !strings.Contains(err.Error(), "16x4") {
		t.Fatalf("expected size mismatch, got %v", err)
	}
	srv = fakeDaemon(t, 8, 4, "go_goroutines 3\n")
	if err := checkEndpoints(context.Background(), srv.URL, opts); err == nil || !strings.Contains(err.Error(), "metrics") {
		t.Fatalf("expected metrics failure, got %v", err)
	}
}

func TestGet_StatusMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "starting", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	_, err := get(context.Background(), srv.URL, http.StatusOK)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}
