package termview

import (
	"context"
	"time"

	"github.com/abrezinsky/prizewheel/internal/strip"
)

// RenderStrip replaces the tiles on screen. The drawn window is exactly the
// visible tiles so the center slot is the middle of the window.
func (s *Screen) RenderStrip(layout *strip.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnimationLocked()
	s.layout = layout
	s.width = layout.VisibleTileCount * TileWidth
	if s.width == 0 {
		s.width = TileWidth
	}
	s.drawStripLocked()
}

// ResetTransform jumps back to translation zero
func (s *Screen) ResetTransform() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnimationLocked()
	s.position = 0
	s.drawStripLocked()
}

// NextFrame waits one frame so the reset is on screen before the transition starts
func (s *Screen) NextFrame(ctx context.Context) error {
	t := time.NewTimer(s.frame)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ApplyTransform animates toward tr.Offset and calls done once the final frame
// is drawn. Closing the screen or rendering a new strip cancels the animation
// without calling done.
func (s *Screen) ApplyTransform(tr strip.Transition, done func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAnimationLocked()
	if s.closed {
		return
	}

	stop := make(chan struct{})
	s.anim = stop
	go s.animate(tr, stop, done)
}

func (s *Screen) animate(tr strip.Transition, stop chan struct{}, done func()) {
	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		elapsed := time.Since(start)
		s.mu.Lock()
		if s.anim != stop {
			s.mu.Unlock()
			return
		}
		s.position = tr.PositionAt(elapsed)
		s.drawStripLocked()
		finished := elapsed >= tr.Duration
		if finished {
			s.anim = nil
		}
		s.mu.Unlock()

		if finished {
			done()
			return
		}
	}
}

// stopAnimationLocked cancels a running animation. Caller holds mu.
func (s *Screen) stopAnimationLocked() {
	if s.anim != nil {
		close(s.anim)
		s.anim = nil
	}
}

// Position returns the current translation in columns
func (s *Screen) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}
