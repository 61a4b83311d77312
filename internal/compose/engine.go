// Package compose drives AI draft generation and the compose form. A
// generated draft is revealed one character per tick; every Generate
// call starts a new epoch and ticks from older epochs are dropped, so at
// most one reveal is ever advancing.
package compose

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// NewEmailTarget is the generation target used when composing without a
// reply target.
const NewEmailTarget = "new_email"

// DefaultRevealInterval is the reveal cadence used when none is configured.
const DefaultRevealInterval = 18 * time.Millisecond

// ErrEmptyInstruction is returned when Generate is called with a blank
// instruction. No request is issued.
var ErrEmptyInstruction = errors.New("instruction is empty")

// Generator produces draft text for a target email.
type Generator interface {
	GenerateDraft(ctx context.Context, target, instruction string) (string, error)
}

// GeneratedMsg carries the generation result for Epoch.
type GeneratedMsg struct {
	Epoch uint64
	Text  string
	Err   error
}

// RevealTickMsg advances the reveal of Epoch by one character.
type RevealTickMsg struct {
	Epoch uint64
}

// Engine owns the draft body while a generation is in progress.
type Engine struct {
	gen      Generator
	interval time.Duration
	log      *zap.Logger

	epoch      uint64
	generating bool
	text       []rune
	cursor     int
	body       string
	err        error
}

// NewEngine creates an engine revealing text every interval.
func NewEngine(gen Generator, interval time.Duration, log *zap.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gen: gen, interval: interval, log: log.Named("compose")}
}

// Generate starts a new generation session for target, superseding any
// session in progress. An empty target means a new email.
func (e *Engine) Generate(target, instruction string) (tea.Cmd, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrEmptyInstruction
	}
	if target == "" {
		target = NewEmailTarget
	}

	e.epoch++
	e.generating = true
	e.text = nil
	e.cursor = 0
	e.body = ""
	e.err = nil

	epoch := e.epoch
	gen := e.gen
	e.log.Debug("generation started",
		zap.Uint64("epoch", epoch),
		zap.String("email_id", target),
	)
	return func() tea.Msg {
		text, err := gen.GenerateDraft(context.Background(), target, instruction)
		return GeneratedMsg{Epoch: epoch, Text: text, Err: err}
	}, nil
}

// Update handles generation results and reveal ticks. Messages from a
// superseded epoch are ignored.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case GeneratedMsg:
		if msg.Epoch != e.epoch || !e.generating {
			return nil
		}
		if msg.Err != nil {
			e.generating = false
			e.body = ""
			e.err = msg.Err
			e.log.Error("generation failed", zap.Uint64("epoch", msg.Epoch), zap.Error(msg.Err))
			return nil
		}
		e.text = []rune(msg.Text)
		e.cursor = 0
		e.body = ""
		if len(e.text) == 0 {
			e.generating = false
			return nil
		}
		return e.tick()

	case RevealTickMsg:
		if msg.Epoch != e.epoch || !e.generating || e.text == nil {
			return nil
		}
		e.cursor++
		e.body = string(e.text[:e.cursor])
		if e.cursor >= len(e.text) {
			e.generating = false
			return nil
		}
		return e.tick()
	}
	return nil
}

func (e *Engine) tick() tea.Cmd {
	epoch := e.epoch
	return tea.Tick(e.interval, func(time.Time) tea.Msg {
		return RevealTickMsg{Epoch: epoch}
	})
}

// SetBody replaces the body with a manual edit. Edits are rejected while
// a generation owns the body.
func (e *Engine) SetBody(s string) bool {
	if e.generating {
		return false
	}
	e.body = s
	return true
}

// Reset abandons any session in progress and clears the body.
func (e *Engine) Reset() {
	e.epoch++
	e.generating = false
	e.text = nil
	e.cursor = 0
	e.body = ""
	e.err = nil
}

func (e *Engine) Body() string { return e.body }
func (e *Engine) Generating() bool { return e.generating }
func (e *Engine) Err() error { return e.err }
func (e *Engine) Epoch() uint64 { return e.epoch }
func (e *Engine) Revealed() int { return e.cursor }
func (e *Engine) Pending() int { return len(e.text) - e.cursor }
