package testctl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Cmd describes a child process run by testctl.
type Cmd struct {
	Path   string
	Args   []string
	Env    map[string]string // additional env vars
	Dir    string            // working directory
	Stream bool              // prefix each output line instead of passing it through
	Out    io.Writer         // defaults to os.Stdout
}

func (c Cmd) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	return cmd
}

func RunCmd(ctx context.Context, c Cmd) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	cmd := c.command(ctx)
	debug("[exec] %s %v", c.Path, c.Args)
	if !c.Stream {
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); stream(&mu, out, "OUT", stdout) }()
	go func() { defer wg.Done(); stream(&mu, out, "ERR", stderr) }()
	// Pipes must be drained before Wait closes them.
	wg.Wait()
	return cmd.Wait()
}

func runCmdVerbose(ctx context.Context, name string, args ...string) error {
	return RunCmd(ctx, Cmd{Path: name, Args: args})
}

func runEnvCmdStreaming(ctx context.Context, env map[string]string, name string, args ...string) error {
	return RunCmd(ctx, Cmd{Path: name, Args: args, Env: env, Stream: true})
}

func stream(mu *sync.Mutex, w io.Writer, prefix string, r io.Reader) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		mu.Lock()
		fmt.Fprintf(w, "%s| %s\n", prefix, s.Text())
		mu.Unlock()
	}
}
