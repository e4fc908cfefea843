package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shufflerd/internal/app"
	"shufflerd/internal/config"
	"shufflerd/internal/httpapi"
	"shufflerd/pkg/types"
)

// fastConfig scales the cadence down so a test sees many cycles quickly.
func fastConfig() config.Config {
	return config.Config{
		Width:           32,
		Height:          16,
		FlipInterval:    0.01,
		RevealInterval:  0.1,
		DisplayFPS:      100,
		DummyMinLatency: 0.01,
		DummyMaxLatency: 0.03,
		Prompts:         []string{"alpha", "beta", "gamma"},
	}.WithDefaults()
}

// startApp builds the pipeline, serves it over httptest and runs it until
// the test ends.
func startApp(t *testing.T, cfg config.Config) (*httptest.Server, *app.App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	a, err := app.Build(ctx, cfg, zerolog.Nop())
	if err != nil {
		cancel()
		t.Fatalf("build: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(httpapi.NewPipelineService(a.Pipeline, a.Compositor, a.Bus)))
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, a.Presenter().Run) }()
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("run did not stop")
		}
	})
	return srv, a
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpSend(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func getStatus(t *testing.T, base string) types.StatusResponse {
	t.Helper()
	resp, body := httpGet(t, base+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d %s", resp.StatusCode, string(body))
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, string(body))
	}
	return st
}

func waitFor(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
