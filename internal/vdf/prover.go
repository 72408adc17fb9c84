// Copyright (c) 2025 @AmarnathCJD

// Package vdf solves the login power check: T sequential squarings of x
// modulo N, bounded below and above in wall-clock time, signed with Hash32.
package vdf

import (
	"context"
	"time"

	"github.com/amarnathcjd/moocauth/internal/bignum"
	"github.com/pkg/errors"
)

// DefaultChunkSize is the number of squarings between clock and
// cancellation checks.
const DefaultChunkSize = 2000

type State int

const (
	Idle State = iota
	Running
	Completed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Done reports whether s is terminal.
func (s State) Done() bool {
	return s == Completed || s == TimedOut
}

// Proof is the outcome of a run. Iterations equals the challenge's T unless
// the run timed out.
type Proof struct {
	SessionID  string
	Puzzle     string
	X          string
	Iterations int64
	Elapsed    time.Duration
	Signature  uint32
	MaxTime    time.Duration
	TimedOut   bool
}

// SpendTime is Elapsed in whole milliseconds, as reported to the server.
func (p *Proof) SpendTime() int64 {
	return p.Elapsed.Milliseconds()
}

// Query returns the string the signature was computed over.
func (p *Proof) Query() string {
	return SignedQuery(p.Iterations, p.SpendTime(), p.X)
}

// Verify recomputes the signature. It does not redo the squarings.
func (p *Proof) Verify() bool {
	return Hash32(p.Query(), uint32(p.Iterations)) == p.Signature
}

// Prover holds the state of one challenge. It is not safe for concurrent
// use; Run drives it from a single goroutine.
type Prover struct {
	ch   *Challenge
	opts *options
	mod  *bignum.Modulus
	x0   *bignum.Int

	x          *bignum.Int
	iterations int64
	state      State
	start      time.Time
	proof      *Proof
}

func NewProver(ch *Challenge, opts ...OptionFunc) (*Prover, error) {
	if ch == nil {
		return nil, errors.Wrap(ErrInvalidChallenge, "nil challenge")
	}
	if err := ch.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	n, err := bignum.FromHex(ch.Modulus)
	if err != nil {
		return nil, errors.Wrap(err, "challenge modulus")
	}
	mod, err := bignum.NewModulus(n)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidChallenge, err.Error())
	}
	x, err := bignum.FromHex(ch.X)
	if err != nil {
		return nil, errors.Wrap(err, "challenge x")
	}

	return &Prover{
		ch:   ch,
		opts: o,
		mod:  mod,
		x0:   mod.Reduce(x),
		x:    mod.Reduce(x),
	}, nil
}

func (p *Prover) State() State          { return p.state }
func (p *Prover) Iterations() int64     { return p.iterations }
func (p *Prover) Challenge() *Challenge { return p.ch }

// Start moves an idle prover to Running and starts its clock. It is a no-op
// in any other state.
func (p *Prover) Start() {
	if p.state != Idle {
		return
	}
	p.state = Running
	p.start = p.opts.clock.Now()
	p.opts.logger.Debugf("vdf %s: start t=%d min=%s max=%s", p.ch.SessionID, p.ch.T, p.ch.MinTime, p.ch.MaxTime)
}

// Step performs at most one chunk of squarings and updates the state. When
// all T squarings are done before MinTime it returns the time left to idle
// instead of working.
func (p *Prover) Step() (done bool, wait time.Duration) {
	switch {
	case p.state == Idle:
		p.Start()
	case p.state.Done():
		return true, 0
	}

	if remaining := p.ch.T - p.iterations; remaining > 0 {
		n := int64(p.opts.chunkSize)
		if remaining < n {
			n = remaining
		}
		p.x = p.mod.SquareN(p.x, int(n))
		p.iterations += n
		p.opts.logger.Tracef("vdf %s: %d/%d", p.ch.SessionID, p.iterations, p.ch.T)
	}

	elapsed := p.opts.clock.Now().Sub(p.start)
	switch {
	case p.iterations >= p.ch.T && elapsed >= p.ch.MinTime:
		p.finish(Completed, elapsed)
		return true, 0
	case p.ch.MaxTime > 0 && elapsed > p.ch.MaxTime:
		p.finish(TimedOut, elapsed)
		return true, 0
	case p.iterations >= p.ch.T:
		return false, p.ch.MinTime - elapsed
	}
	return false, 0
}

// Run drives the prover until it completes or times out. Cancellation is
// honoured between chunks and while idling; a cancelled run is reset to
// Idle and returns ctx.Err().
func (p *Prover) Run(ctx context.Context) (*Proof, error) {
	if p.state.Done() {
		return p.proof, nil
	}
	for {
		if err := ctx.Err(); err != nil {
			p.Reset()
			return nil, err
		}

		done, wait := p.Step()
		if done {
			return p.proof, nil
		}
		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			p.Reset()
			return nil, ctx.Err()
		case <-p.opts.clock.After(wait):
		}
	}
}

// Result returns the proof once the prover has reached a terminal state.
func (p *Prover) Result() (*Proof, error) {
	if !p.state.Done() {
		return nil, errors.Wrapf(ErrNotReady, "prover is %s", p.state)
	}
	return p.proof, nil
}

// Reset discards all progress.
func (p *Prover) Reset() {
	p.x = p.x0
	p.iterations = 0
	p.state = Idle
	p.start = time.Time{}
	p.proof = nil
}

func (p *Prover) finish(state State, elapsed time.Duration) {
	p.state = state
	proof := &Proof{
		SessionID:  p.ch.SessionID,
		Puzzle:     p.ch.Puzzle,
		X:          p.x.Hex(),
		Iterations: p.iterations,
		Elapsed:    elapsed,
		MaxTime:    p.ch.MaxTime,
		TimedOut:   state == TimedOut,
	}
	proof.Signature = Hash32(proof.Query(), uint32(proof.Iterations))
	p.proof = proof

	log := p.opts.logger.WithFields(map[string]any{
		"iterations": proof.Iterations,
		"elapsed":    elapsed,
	})
	if state == TimedOut {
		log.Warnf("vdf %s: stopped at maxTime", p.ch.SessionID)
		return
	}
	log.Debugf("vdf %s: %s", p.ch.SessionID, state)
}

// Solve creates a prover for ch and runs it to completion.
func Solve(ctx context.Context, ch *Challenge, opts ...OptionFunc) (*Proof, error) {
	p, err := NewProver(ch, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// Clock abstracts wall time so tests can control elapsed durations.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
