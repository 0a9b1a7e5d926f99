package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jt05610/cpn"
	"go.uber.org/zap"
)

var (
	ErrUnknownTransition = errors.New("unknown transition")
	ErrStepLimit         = errors.New("step limit reached")
)

// Step is one recorded firing.
type Step struct {
	Index      int
	Transition *cpn.Transition
	Effects    []cpn.Effect
	Before     cpn.Marking
	After      cpn.Marking
}

// Notification is called after a transition fires. An error stops Run.
type Notification func(ctx context.Context, step Step) error

// Chooser picks the transition Run fires next from a non-empty list of hot
// enabled transitions. Returning nil stops Run.
type Chooser func(enabled []*cpn.Transition) *cpn.Transition

// First chooses the first transition by name.
func First(enabled []*cpn.Transition) *cpn.Transition {
	return enabled[0]
}

// Session holds the current marking of a net and fires transitions against
// it. Transitions are hot unless marked cold, and only hot transitions are
// fired by Run.
type Session struct {
	net           *cpn.Net
	initial       cpn.Marking
	marking       cpn.Marking
	history       *FIFO[Step]
	steps         int
	cold          map[string]bool
	notifications map[string][]Notification
	chooser       Chooser
	logger        *zap.Logger
	mu            sync.Mutex
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHistoryLimit bounds the number of steps kept. Zero keeps every step.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.history = NewFIFO[Step](n)
	}
}

func WithCold(ts ...*cpn.Transition) Option {
	return func(s *Session) {
		for _, t := range ts {
			s.cold[t.ID()] = true
		}
	}
}

func WithChooser(c Chooser) Option {
	return func(s *Session) {
		s.chooser = c
	}
}

func New(net *cpn.Net, m cpn.Marking, opts ...Option) *Session {
	s := &Session{
		net:           net,
		initial:       m,
		marking:       m,
		history:       NewFIFO[Step](0),
		cold:          make(map[string]bool),
		notifications: make(map[string][]Notification),
		chooser:       First,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Net() *cpn.Net { return s.net }

func (s *Session) Marking() cpn.Marking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marking
}

// Enabled returns the transitions enabled in the current marking.
func (s *Session) Enabled() ([]*cpn.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.EnabledTransitions(s.marking)
}

// Hot returns the enabled transitions that are not cold.
func (s *Session) Hot() ([]*cpn.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hot()
}

func (s *Session) hot() ([]*cpn.Transition, error) {
	enabled, err := s.net.EnabledTransitions(s.marking)
	if err != nil {
		return nil, err
	}
	hot := enabled[:0]
	for _, t := range enabled {
		if !s.cold[t.ID()] {
			hot = append(hot, t)
		}
	}
	return hot, nil
}

// SetCold marks t as cold, or hot again when cold is false.
func (s *Session) SetCold(t *cpn.Transition, cold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cold {
		s.cold[t.ID()] = true
		return
	}
	delete(s.cold, t.ID())
}

// OnFire registers fn for firings of t, or of every transition when t is nil.
func (s *Session) OnFire(t *cpn.Transition, fn Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ""
	if t != nil {
		key = t.ID()
	}
	s.notifications[key] = append(s.notifications[key], fn)
}

func (s *Session) fire(t *cpn.Transition) (Step, error) {
	effects, err := s.net.Effects(s.marking, t)
	if err != nil {
		s.logger.Error("Failed to fire transition",
			zap.String("transition", t.Name()),
			zap.Error(err),
		)
		return Step{}, err
	}
	after := cpn.ApplyEffects(s.marking, effects)
	step := Step{
		Index:      s.steps,
		Transition: t,
		Effects:    effects,
		Before:     s.marking,
		After:      after,
	}
	s.marking = after
	s.steps++
	s.history.Push(step)
	s.logger.Debug("Fired transition",
		zap.Int("step", step.Index),
		zap.String("transition", t.Name()),
		zap.Int("effects", len(effects)),
		zap.Int("tokens", after.Count()),
	)
	return step, nil
}

func (s *Session) notify(ctx context.Context, step Step) error {
	s.mu.Lock()
	fns := append([]Notification(nil), s.notifications[""]...)
	fns = append(fns, s.notifications[step.Transition.ID()]...)
	s.mu.Unlock()
	for _, fn := range fns {
		if err := fn(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// Fire fires t in the current marking. Cold transitions can be fired this
// way. On error the marking is unchanged.
func (s *Session) Fire(ctx context.Context, t *cpn.Transition) (Step, error) {
	if t == nil {
		return Step{}, fmt.Errorf("%w: nil", ErrUnknownTransition)
	}
	if _, ok := s.net.Transition(t.ID()); !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownTransition, t.Name())
	}
	s.mu.Lock()
	step, err := s.fire(t)
	s.mu.Unlock()
	if err != nil {
		return Step{}, err
	}
	return step, s.notify(ctx, step)
}

// FireByID fires the transition with the given id or name.
func (s *Session) FireByID(ctx context.Context, id string) (Step, error) {
	t, ok := s.net.Transition(id)
	if !ok {
		for _, candidate := range s.net.Transitions() {
			if candidate.Name() == id {
				t, ok = candidate, true
				break
			}
		}
	}
	if !ok {
		return Step{}, fmt.Errorf("%w: %s", ErrUnknownTransition, id)
	}
	return s.Fire(ctx, t)
}

// Run fires hot transitions until none are enabled, ctx is done or maxSteps
// transitions have fired. A maxSteps of zero or less means no limit. Run
// returns the steps it took, and ErrStepLimit if it stopped at the limit with
// hot transitions still enabled.
func (s *Session) Run(ctx context.Context, maxSteps int) ([]Step, error) {
	var steps []Step
	for {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		s.mu.Lock()
		hot, err := s.hot()
		if err != nil {
			s.mu.Unlock()
			return steps, err
		}
		if len(hot) == 0 {
			s.mu.Unlock()
			s.logger.Debug("No hot transitions enabled", zap.Int("steps", len(steps)))
			return steps, nil
		}
		if maxSteps > 0 && len(steps) >= maxSteps {
			s.mu.Unlock()
			return steps, fmt.Errorf("%w: %d", ErrStepLimit, maxSteps)
		}
		next := s.chooser(hot)
		if next == nil {
			s.mu.Unlock()
			return steps, nil
		}
		step, err := s.fire(next)
		s.mu.Unlock()
		if err != nil {
			return steps, err
		}
		steps = append(steps, step)
		if err := s.notify(ctx, step); err != nil {
			return steps, err
		}
	}
}

// History returns the retained steps, oldest first.
func (s *Session) History() []Step {
	return s.history.Values()
}

// Reset restores the initial marking and clears the history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marking = s.initial
	s.steps = 0
	s.history.Clear()
	s.logger.Debug("Reset session")
}
