// Package spinner drives one user's spin cycle: ask the outcome authority for a
// result, animate the strip onto it, then reconcile the local session mirror.
package spinner

import (
	"context"
	"sync"
	"time"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/strip"
	"github.com/abrezinsky/prizewheel/pkg/outcome"
)

// State is the position of the machine in the spin cycle
type State int

const (
	Idle State = iota
	AwaitingOutcome
	Animating
	Settled
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingOutcome:
		return "awaiting_outcome"
	case Animating:
		return "animating"
	case Settled:
		return "settled"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

const (
	defaultSettleGrace    = 2 * time.Second
	defaultRefreshTimeout = 10 * time.Second
)

// Session mirrors the authority's view of one user
type Session struct {
	UserID       int64
	AttemptsLeft int
	Gifts        []models.Gift
}

// Renderer is the presentation layer's geometric contract
type Renderer interface {
	// RenderStrip replaces the displayed tiles
	RenderStrip(layout *strip.Layout)
	// ResetTransform jumps back to translation zero without a transition
	ResetTransform()
	// NextFrame returns once the reset has been drawn
	NextFrame(ctx context.Context) error
	// ApplyTransform starts the transition and calls done when it has visually
	// finished. done may be called more than once; only the first call counts.
	ApplyTransform(tr strip.Transition, done func())
}

// View is the user-facing side of the machine. Methods may be called from a
// background goroutine and must be safe for concurrent use.
type View interface {
	SetTrigger(enabled bool, attemptsLeft int)
	ShowWin(prize models.Prize)
	ShowNoWin(prize models.Prize)
	ShowError(err error)
	ShowGifts(gifts []models.Gift)
}

// Result describes a completed spin
type Result struct {
	Prize        models.Prize
	AttemptsLeft int
	SpinID       string
	Layout       *strip.Layout
}

// Option configures a Machine
type Option func(*Machine)

// WithRounds sets the number of full catalog loops per spin
func WithRounds(rounds int) Option {
	return func(m *Machine) {
		if rounds >= 1 {
			m.rounds = rounds
		}
	}
}

// WithSettleTimeout sets how long the machine waits for the completion signal
// before settling on its own. Zero means the transition duration plus a grace period.
func WithSettleTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.settleTimeout = d
	}
}

// WithRefreshTimeout bounds the background gift refresh after a win
func WithRefreshTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.refreshTimeout = d
	}
}

// Machine is the spin state machine for a single session
type Machine struct {
	mu      sync.Mutex
	state   State
	session Session
	// gen is bumped when a spin starts and when it settles. Status snapshots
	// requested under an older gen never overwrite AttemptsLeft.
	gen      uint64
	giftsGen uint64

	log      logger.Logger
	client   outcome.Client
	catalog  *catalog.Catalog
	measurer strip.Measurer
	renderer Renderer
	view     View

	rounds         int
	settleTimeout  time.Duration
	refreshTimeout time.Duration
	refreshes      sync.WaitGroup
}

// New creates a machine in the Idle state. Start must be called before Spin.
func New(log logger.Logger, client outcome.Client, cat *catalog.Catalog, measurer strip.Measurer, renderer Renderer, view View, opts ...Option) *Machine {
	m := &Machine{
		state:          Idle,
		session:        Session{Gifts: []models.Gift{}},
		log:            log,
		client:         client,
		catalog:        cat,
		measurer:       measurer,
		renderer:       renderer,
		view:           view,
		rounds:         strip.DefaultRounds,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a snapshot of the session mirror
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	s.Gifts = append([]models.Gift(nil), m.session.Gifts...)
	return s
}

// Wait blocks until background gift refreshes have finished
func (m *Machine) Wait() {
	m.refreshes.Wait()
}

// Start binds the session to userID, announces it and loads its status.
// A non-positive id disables the machine permanently.
func (m *Machine) Start(ctx context.Context, userID int64) error {
	if userID <= 0 {
		m.mu.Lock()
		m.state = Disabled
		m.mu.Unlock()

		err := &IdentityError{UserID: userID}
		m.log.Error("Invalid user identity", "user_id", userID)
		m.view.SetTrigger(false, 0)
		m.view.ShowError(err)
		return err
	}

	m.mu.Lock()
	switch m.state {
	case Disabled:
		m.mu.Unlock()
		return ErrDisabled
	case Idle:
	default:
		m.mu.Unlock()
		return ErrSpinInFlight
	}
	m.session = Session{UserID: userID, Gifts: []models.Gift{}}
	m.mu.Unlock()

	m.view.SetTrigger(false, 0)

	if _, err := m.client.Announce(ctx, userID); err != nil {
		terr := &TransportError{Op: "announce", Err: err}
		m.log.Error("Failed to announce user", "user_id", userID, "error", err)
		m.view.ShowError(terr)
		return terr
	}
	m.log.Info("User announced", "user_id", userID)

	return m.Refresh(ctx)
}

// Refresh replaces the session mirror with the authority's snapshot
func (m *Machine) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if err := m.checkIdle(); err != nil {
		m.mu.Unlock()
		return err
	}
	userID := m.session.UserID
	gen := m.gen
	m.mu.Unlock()

	status, err := m.client.FetchStatus(ctx, userID)
	if err != nil {
		terr := &TransportError{Op: "fetch status", Err: err}
		m.log.Error("Failed to fetch user status", "user_id", userID, "error", err)
		m.view.ShowError(terr)
		return terr
	}

	m.mu.Lock()
	// A spin that started or settled meanwhile owns the attempt count
	current := m.gen == gen && m.state == Idle
	if current {
		m.session.AttemptsLeft = status.AttemptsLeft
	}
	giftsApplied := m.applyGiftsLocked(gen, status.Gifts)
	attempts := m.session.AttemptsLeft
	m.mu.Unlock()

	if !current {
		m.log.Debug("Discarding stale attempt count", "user_id", userID, "snapshot_attempts", status.AttemptsLeft)
	}
	m.log.Debug("User status loaded", "user_id", userID, "attempts_left", attempts, "gifts", len(status.Gifts))
	if giftsApplied {
		m.view.ShowGifts(append([]models.Gift(nil), status.Gifts...))
	}
	if current {
		m.view.SetTrigger(attempts > 0, attempts)
	}
	return nil
}

// applyGiftsLocked keeps the newest gift snapshot. It must be called with mu held.
func (m *Machine) applyGiftsLocked(gen uint64, gifts []models.Gift) bool {
	if gen < m.giftsGen {
		return false
	}
	m.giftsGen = gen
	m.session.Gifts = gifts
	return true
}

// checkIdle must be called with mu held
func (m *Machine) checkIdle() error {
	switch {
	case m.state == Disabled:
		return ErrDisabled
	case m.state != Idle:
		return ErrSpinInFlight
	case m.session.UserID == 0:
		return ErrNotStarted
	}
	return nil
}

// Spin runs one full cycle. The outcome is known, and its prize resolved in the
// catalog, before any animation starts. On failure the session is left exactly
// as it was and the machine is back in Idle.
func (m *Machine) Spin(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	if err := m.checkIdle(); err != nil {
		m.mu.Unlock()
		m.log.Debug("Spin rejected", "error", err)
		m.view.ShowError(err)
		return nil, err
	}
	if m.session.AttemptsLeft <= 0 {
		m.mu.Unlock()
		m.log.Debug("Spin rejected", "error", ErrNoAttempts)
		m.view.ShowError(ErrNoAttempts)
		return nil, ErrNoAttempts
	}
	m.state = AwaitingOutcome
	m.gen++
	userID := m.session.UserID
	attempts := m.session.AttemptsLeft
	m.mu.Unlock()

	m.view.SetTrigger(false, attempts)

	g, err := m.measurer.Measure()
	if err == nil {
		err = g.Validate()
	}
	if err != nil {
		return nil, m.abort(&GeometryError{Geometry: g, Err: err})
	}

	m.log.Info("Requesting spin", "user_id", userID)
	res, err := m.client.Spin(ctx, userID)
	if err != nil {
		return nil, m.abort(&TransportError{Op: "spin", Err: err})
	}

	idx, err := m.catalog.Lookup(res.WonPrize.Name)
	if err != nil {
		return nil, m.abort(&UnknownPrizeError{Name: res.WonPrize.Name})
	}

	layout, err := strip.NewLayout(m.catalog, idx, m.rounds, g)
	if err != nil {
		return nil, m.abort(&GeometryError{Geometry: g, Err: err})
	}

	m.setState(Animating)
	m.log.Debug("Animating spin",
		"prize", res.WonPrize.Name,
		"total_steps", layout.TotalSteps,
		"visible", layout.VisibleTileCount,
		"offset", layout.Offset)
	m.animate(ctx, layout)

	return m.settle(ctx, userID, res, layout), nil
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// abort returns to Idle without touching the session and surfaces err
func (m *Machine) abort(err error) error {
	m.mu.Lock()
	m.state = Idle
	attempts := m.session.AttemptsLeft
	m.mu.Unlock()

	m.log.Warn("Spin aborted", "error", err)
	m.view.ShowError(err)
	m.view.SetTrigger(attempts > 0, attempts)
	return err
}

// animate blocks until the transition has completed once. The authority has
// already recorded the spin, so a missing completion signal or a cancelled
// context settles the spin rather than abandoning it.
func (m *Machine) animate(ctx context.Context, layout *strip.Layout) {
	m.renderer.RenderStrip(layout)
	m.renderer.ResetTransform()
	if err := m.renderer.NextFrame(ctx); err != nil {
		m.log.Debug("Frame yield interrupted", "error", err)
	}

	tr := layout.Transition()
	settled := newSettleSignal()
	m.renderer.ApplyTransform(tr, func() {
		if !settled.Fire() {
			m.log.Debug("Ignoring duplicate settle signal")
		}
	})

	timeout := m.settleTimeout
	if timeout <= 0 {
		timeout = tr.Duration + defaultSettleGrace
	}
	watchdog := time.NewTimer(timeout)
	defer watchdog.Stop()

	select {
	case <-settled.Done():
	case <-watchdog.C:
		settled.Fire()
		m.log.Warn("Transition did not report completion, settling", "timeout", timeout)
	case <-ctx.Done():
		settled.Fire()
		m.log.Warn("Context ended during animation, settling", "error", ctx.Err())
	}
}

// settle overwrites the mirror with the authority's attempt count and reveals the result
func (m *Machine) settle(ctx context.Context, userID int64, res *models.SpinResult, layout *strip.Layout) *Result {
	m.mu.Lock()
	m.state = Settled
	m.gen++
	gen := m.gen
	m.session.AttemptsLeft = res.AttemptsLeft
	attempts := m.session.AttemptsLeft
	m.mu.Unlock()

	prize := layout.Landing()
	m.log.Info("Spin settled", "user_id", userID, "prize", prize.Name, "attempts_left", attempts)

	if res.WonPrize.IsWin() {
		m.view.ShowWin(prize)
		m.refreshGifts(ctx, userID, gen)
	} else {
		m.view.ShowNoWin(prize)
	}

	m.setState(Idle)
	m.view.SetTrigger(attempts > 0, attempts)

	return &Result{
		Prize:        prize,
		AttemptsLeft: attempts,
		SpinID:       res.SpinID,
		Layout:       layout,
	}
}

// refreshGifts reloads the gift inventory in the background. Attempts are not
// taken from this snapshot; settle already applied the authoritative count. A
// snapshot older than one already applied is dropped.
func (m *Machine) refreshGifts(ctx context.Context, userID int64, gen uint64) {
	m.refreshes.Add(1)
	go func() {
		defer m.refreshes.Done()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.refreshTimeout)
		defer cancel()

		status, err := m.client.FetchStatus(rctx, userID)
		if err != nil {
			m.log.Warn("Failed to refresh gifts", "user_id", userID, "error", err)
			return
		}

		m.mu.Lock()
		applied := m.applyGiftsLocked(gen, status.Gifts)
		m.mu.Unlock()

		if !applied {
			m.log.Debug("Discarding stale gift snapshot", "user_id", userID)
			return
		}
		m.view.ShowGifts(append([]models.Gift(nil), status.Gifts...))
	}()
}
