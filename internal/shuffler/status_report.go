package shuffler

import (
	"time"

	"shufflerd/pkg/types"
)

// Snapshot is a read-only projection of the pipeline state.
type Snapshot struct {
	State      State
	Err        string
	Cycles     uint64
	Flips      uint64
	Rotations  uint64
	Refills    uint64
	Integrated uint64
	Generation CoordinatorStats
	Census     Census
}

// Snapshot returns counters and ownership in one consistent read.
func (p *Pipeline) Snapshot() Snapshot {
	census := p.Census()
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Snapshot{
		State:      p.state,
		Err:        p.err,
		Cycles:     p.cycles.Load(),
		Flips:      p.flips.Load(),
		Rotations:  p.rotations.Load(),
		Refills:    p.refills.Load(),
		Integrated: p.integrated.Load(),
		Census:     census,
	}
	if p.coord != nil {
		s.Generation = p.coord.Stats()
	}
	return s
}

// Status builds a detailed status response for /status.
func (p *Pipeline) Status() types.StatusResponse {
	s := p.Snapshot()
	params := p.Params()
	resp := types.StatusResponse{
		State:      string(s.State),
		LastError:  s.Err,
		Cycles:     s.Cycles,
		Rotations:  s.Rotations,
		Refills:    s.Refills,
		Integrated: s.Integrated,
		Generation: types.GenerationStats{
			Started:   s.Generation.Started,
			Completed: s.Generation.Completed,
			Failed:    s.Generation.Failed,
			Cancelled: s.Generation.Cancelled,
			InFlight:  s.Generation.InFlight,
		},
		Buffers: types.BufferCensus{
			Free:      s.Census.Free,
			Stock:     s.Census.Stock,
			Slots:     s.Census.Slots,
			InFlight:  s.Census.InFlight,
			Refilling: s.Census.Refilling,
			Total:     s.Census.Total,
		},
		FlipIntervalSec:   p.cfg.FlipInterval.Seconds(),
		RevealIntervalSec: p.cfg.RevealInterval.Seconds(),
		InsertionCount:    p.cfg.InsertionCount,
		Admission:         string(p.cfg.Admission),
		Params: types.Params{
			Prompt:    params.Prompt,
			Strength:  params.Strength,
			StepCount: params.StepCount,
			Guidance:  params.Guidance,
			Seed:      params.Seed,
		},
		UptimeSeconds:  int64(time.Since(p.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	p.mu.RLock()
	c := p.clock
	p.mu.RUnlock()
	if c != nil {
		v := c.View()
		resp.FlipProgress = v.Flip
		resp.RevealProgress = v.RevealProgress
		resp.RevealVisible = v.RevealVisible
	}
	return resp
}
