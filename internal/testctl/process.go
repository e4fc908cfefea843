package testctl

import (
	"os"
	"os/exec"
	"sync"
	"time"
)

type proc struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// ProcManager starts child processes and stops them all on cleanup.
type ProcManager struct {
	mu    sync.Mutex
	procs []*proc
	grace time.Duration
}

func NewProcManager(grace time.Duration) *ProcManager { return &ProcManager{grace: grace} }

// Start launches cmd and tracks it. The returned channel closes on exit.
func (pm *ProcManager) Start(cmd *exec.Cmd) (<-chan struct{}, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p := &proc{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	pm.mu.Lock()
	pm.procs = append(pm.procs, p)
	pm.mu.Unlock()
	return p.done, nil
}

// Len reports how many processes are tracked.
func (pm *ProcManager) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.procs)
}

// StopAll interrupts every tracked process and kills those still running
// after the grace period. It returns the first non-nil exit error.
func (pm *ProcManager) StopAll() error {
	pm.mu.Lock()
	procs := pm.procs
	pm.procs = nil
	pm.mu.Unlock()
	for _, p := range procs {
		_ = p.cmd.Process.Signal(os.Interrupt)
	}
	var first error
	timer := time.NewTimer(pm.grace)
	defer timer.Stop()
	for _, p := range procs {
		select {
		case <-p.done:
		case <-timer.C:
			warn("[proc] pid %d ignored interrupt; killing", p.cmd.Process.Pid)
			_ = p.cmd.Process.Kill()
			<-p.done
		}
		if p.err != nil && first == nil {
			first = p.err
		}
	}
	return first
}
