package shuffler

import "strings"

// Params returns the generation parameters the next generation will use.
// Seed is the configured base seed.
func (p *Pipeline) Params() Params {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.params
}

// Prompts returns a copy of the prompt bank.
func (p *Pipeline) Prompts() []string {
	return append([]string(nil), p.cfg.Prompts...)
}

// ParamsUpdate carries optional changes; nil fields are left alone.
type ParamsUpdate struct {
	Prompt    *string
	Strength  *float64
	StepCount *int
	Guidance  *float64
}

// SetParams applies u to the parameters of future generations. A running
// generation keeps the values it started with.
func (p *Pipeline) SetParams(u ParamsUpdate) error {
	if u.Prompt != nil && strings.TrimSpace(*u.Prompt) == "" {
		return invalidParamsError{field: "prompt", msg: "must not be empty"}
	}
	if u.Strength != nil && (*u.Strength <= 0 || *u.Strength > 1) {
		return invalidParamsError{field: "strength", msg: "must be in (0,1]"}
	}
	if u.StepCount != nil && *u.StepCount <= 0 {
		return invalidParamsError{field: "step_count", msg: "must be positive"}
	}
	if u.Guidance != nil && *u.Guidance <= 0 {
		return invalidParamsError{field: "guidance", msg: "must be positive"}
	}
	p.mu.Lock()
	if u.Prompt != nil {
		p.params.Prompt = *u.Prompt
	}
	if u.Strength != nil {
		p.params.Strength = *u.Strength
	}
	if u.StepCount != nil {
		p.params.StepCount = *u.StepCount
	}
	if u.Guidance != nil {
		p.params.Guidance = *u.Guidance
	}
	p.mu.Unlock()
	return nil
}

// SelectPrompt switches to the prompt at index in the bank.
func (p *Pipeline) SelectPrompt(index int) error {
	if index < 0 || index >= len(p.cfg.Prompts) {
		return promptNotFoundError{index: index, size: len(p.cfg.Prompts)}
	}
	prompt := p.cfg.Prompts[index]
	return p.SetParams(ParamsUpdate{Prompt: &prompt})
}
