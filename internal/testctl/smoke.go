package testctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"shufflerd/pkg/types"
)

// SmokeOptions configures a smoke run of the built daemon.
type SmokeOptions struct {
	Port      int
	Generator string
	Width     int
	Height    int
	Timeout   time.Duration
}

func buildDaemon(ctx context.Context, dir string) (string, error) {
	bin := filepath.Join(dir, "shufflerd")
	err := RunCmd(ctx, Cmd{Path: "go", Args: []string{"build", "-o", bin, "./cmd/shufflerd"}, Env: map[string]string{"CGO_ENABLED": "0"}})
	return bin, err
}

// runSmoke builds shufflerd, starts it and checks the public endpoints.
func runSmoke(ctx context.Context, opts SmokeOptions) error {
	info("==== Smoke test shufflerd ====")
	tmp, err := os.MkdirTemp("", "shufflerd-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	bin, err := buildDaemon(ctx, tmp)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	port, err := preferOrFree(opts.Port)
	if err != nil {
		return err
	}
	pm := NewProcManager(5 * time.Second)
	cmd := exec.CommandContext(ctx, bin,
		"--addr", fmt.Sprintf(":%d", port),
		"--generator", opts.Generator,
		"--width", fmt.Sprint(opts.Width),
		"--height", fmt.Sprint(opts.Height),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if _, err := pm.Start(cmd); err != nil {
		return err
	}
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	checkErr := func() error {
		if err := waitHTTP(ctx, base+"/readyz", http.StatusOK, opts.Timeout); err != nil {
			return err
		}
		return checkEndpoints(ctx, base, opts)
	}()
	stopErr := pm.StopAll()
	if checkErr != nil {
		return checkErr
	}
	if stopErr != nil {
		return fmt.Errorf("shufflerd did not exit cleanly: %w", stopErr)
	}
	info("[smoke] OK")
	return nil
}

// checkEndpoints verifies that a running daemon rotates frames and serves
// its frame, params and metrics.
func checkEndpoints(ctx context.Context, base string, opts SmokeOptions) error {
	deadline := time.Now().Add(opts.Timeout)
	for {
		var st types.StatusResponse
		if err := getJSON(ctx, base+"/status", &st); err != nil {
			return err
		}
		debug("[smoke] state=%s rotations=%d integrated=%d", st.State, st.Rotations, st.Integrated)
		if st.Rotations > 0 {
			info("[smoke] state=%s rotations=%d buffers=%d", st.State, st.Rotations, st.Buffers.Total)
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no rotations after %v (state %s)", opts.Timeout, st.State)
		}
		time.Sleep(100 * time.Millisecond)
	}

	body, err := get(ctx, base+"/frame.png", http.StatusOK)
	if err != nil {
		return err
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("frame.png: %w", err)
	}
	if b := img.Bounds(); b.Dx() != opts.Width || b.Dy() != opts.Height {
		return fmt.Errorf("frame.png: got %dx%d, want %dx%d", b.Dx(), b.Dy(), opts.Width, opts.Height)
	}

	var p types.Params
	if err := getJSON(ctx, base+"/params", &p); err != nil {
		return err
	}
	if p.Prompt == "" {
		return fmt.Errorf("params: empty prompt")
	}

	metrics, err := get(ctx, base+"/metrics", http.StatusOK)
	if err != nil {
		return err
	}
	if !bytes.Contains(metrics, []byte("shufflerd_")) {
		return fmt.Errorf("metrics: no shufflerd series")
	}
	return nil
}

func get(ctx context.Context, url string, want int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != want {
		return nil, fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

func getJSON(ctx context.Context, url string, v any) error {
	body, err := get(ctx, url, http.StatusOK)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	return nil
}
