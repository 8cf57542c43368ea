package orchestrator

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"wander/internal/logger"
	"wander/internal/model"
)

// PositionSource is a single-shot device position lookup. It may block until
// ctx is done when no position will ever arrive.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (model.GeoPoint, error)
}

// Boot is the process-wide initialization owned by main. The mount rule runs
// through it exactly once no matter how many times the root model is
// (re)created; Shutdown ends it.
type Boot struct {
	position PositionSource
	log      *logger.Logger

	mu     sync.Mutex
	done   bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewBoot(position PositionSource, log *logger.Logger) *Boot {
	if log == nil {
		log = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Boot{
		position: position,
		log:      log.WithComponent("boot"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Mount runs the mount rule on o the first time it is called and returns the
// device position lookup. Later calls do nothing and return nil.
func (b *Boot) Mount(o *Orchestrator, width int) tea.Cmd {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}
	b.done = true

	o.initialize(width)
	b.log.WithField("width", width).Info("initial state applied")

	return b.lookup(false)
}

// Locate runs a device position lookup on demand. The result asks for the
// URL to be recentered.
func (b *Boot) Locate() tea.Cmd {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookup(true)
}

func (b *Boot) lookup(recenter bool) tea.Cmd {
	if b.position == nil {
		return nil
	}
	ctx := b.ctx
	pos := b.position
	log := b.log
	return func() tea.Msg {
		p, err := pos.CurrentPosition(ctx)
		if err != nil {
			// Unavailable or denied: leave position unset.
			log.WithError(err).Debug("device position unavailable")
			return nil
		}
		return model.PositionMsg{Point: p, Recenter: recenter}
	}
}

// Mounted reports whether the mount rule has run.
func (b *Boot) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Shutdown abandons any pending position lookup.
func (b *Boot) Shutdown() {
	b.cancel()
}

// reset tears the boot state down so the mount rule can run again.
func (b *Boot) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancel()
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.done = false
}
