// Package flow drives the analyze -> translate -> render pipeline. One flow
// at a time: starting a new one cancels and discards whatever is in flight.
package flow

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/usecase/translator"
)

// Emitter receives phase stream events for the presentation layer.
type Emitter interface {
	Emit(name string, payload any)
}

// Request is one end-to-end translation run over a captured region.
type Request struct {
	ImageData  []byte
	TargetLang string
	SourceLang string
	Preferred  domain.EngineType
	Fallback   domain.EngineType
	Style      ports.OverlayStyle
}

// Result is only ever published whole: a complete segment set plus the
// rendered image, or nothing.
type Result struct {
	Image    image.Image
	Segments []domain.BilingualSegment
}

type Controller struct {
	extractor ports.TextExtractor
	trans     *translator.Service
	renderer  ports.OverlayRenderer
	em        Emitter
	log       *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	phase  domain.FlowPhase
}

func New(extractor ports.TextExtractor, trans *translator.Service, renderer ports.OverlayRenderer, em Emitter, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		extractor: extractor,
		trans:     trans,
		renderer:  renderer,
		em:        em,
		log:       log,
		phase:     domain.PhaseIdle,
	}
}

// Phase returns the current flow phase.
func (c *Controller) Phase() domain.FlowPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Start launches a flow, cancelling and discarding any in-flight one first.
// The outcome is delivered through the emitter; nothing partial ever reaches
// it, and a discarded flow's late failure never reaches it either.
func (c *Controller) Start(req Request) {
	ctx, gen := c.replace()
	go func() {
		res, err := c.run(ctx, gen, req)
		if err != nil {
			c.fail(gen, err)
			return
		}
		if c.setPhase(gen, domain.PhaseCompleted) {
			c.emit("flow.completed", map[string]any{"result": res})
		}
	}()
}

// Cancel aborts the in-flight flow, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Run executes the pipeline synchronously. Cancellation is cooperative,
// checked at each phase boundary.
func (c *Controller) Run(ctx context.Context, req Request) (*Result, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	return c.run(ctx, gen, req)
}

func (c *Controller) run(ctx context.Context, gen uint64, req Request) (*Result, error) {
	c.setPhase(gen, domain.PhaseAnalyzing)
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	analysis, err := c.extractor.Analyze(ctx, req.ImageData)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled
		}
		return nil, &domain.FlowError{Phase: domain.PhaseAnalyzing, Err: err}
	}
	if len(analysis.Segments) == 0 {
		// Nothing to translate is a failed flow, not an empty success.
		return nil, &domain.FlowError{Phase: domain.PhaseAnalyzing, Err: domain.ErrNoTextFound}
	}

	c.setPhase(gen, domain.PhaseTranslating)
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	segments, err := c.trans.Translate(ctx, translator.Args{
		Segments:   analysis.Segments,
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
		Preferred:  req.Preferred,
		Fallback:   req.Fallback,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled
		}
		return nil, &domain.FlowError{Phase: domain.PhaseTranslating, Err: err}
	}

	c.setPhase(gen, domain.PhaseRendering)
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	img, _, err := image.Decode(bytes.NewReader(req.ImageData))
	if err != nil {
		return nil, &domain.FlowError{Phase: domain.PhaseRendering, Err: err}
	}
	rendered, err := c.renderer.Render(img, segments, req.Style)
	if err != nil {
		return nil, &domain.FlowError{Phase: domain.PhaseRendering, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	return &Result{Image: rendered, Segments: segments}, nil
}

// replace cancels the previous flow's context and installs a fresh one. The
// returned generation tags the new flow; a discarded flow's late phase
// reports carry a stale generation and are dropped.
func (c *Controller) replace() (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.gen++
	return ctx, c.gen
}

// setPhase records and emits the phase change, reporting whether gen still
// identifies the active flow. A discarded flow must not touch the state or
// event stream of its replacement.
func (c *Controller) setPhase(gen uint64, p domain.FlowPhase) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.phase = p
	c.mu.Unlock()
	c.emit("flow.phase", domain.FlowUpdate{Phase: p, Progress: p.Progress()})
	return true
}

func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarded flow finished", "error", err)
		return
	}
	c.phase = domain.PhaseFailed
	c.mu.Unlock()
	c.emit("flow.phase", domain.FlowUpdate{Phase: domain.PhaseFailed, Err: err})
	if errors.Is(err, domain.ErrCancelled) {
		// Cancellation is silent: no error surface, just the terminal phase.
		c.log.Debug("flow cancelled")
		return
	}
	c.log.Error("flow failed", "error", err)
	c.emit("flow.failed", map[string]any{
		"error":    err.Error(),
		"recovery": domain.Recovery(err),
	})
}

func (c *Controller) emit(name string, payload any) {
	if c.em != nil {
		c.em.Emit(name, payload)
	}
}
