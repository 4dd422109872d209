// Package termview is the terminal presentation layer for the wheel. It measures
// the terminal, draws the strip with ANSI escapes and animates its translation.
package termview

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/strip"
)

// ANSI color codes
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	cyan    = "\033[36m"

	clearScreen = "\033[H\033[2J"
	clearLine   = "\033[2K"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

const (
	// CellWidth is the printable width of one tile, margins excluded
	CellWidth = 14
	// Margin is the blank column on each side of a tile
	Margin = 1
	// TileWidth is the distance between two tile origins
	TileWidth = CellWidth + 2*Margin

	// FrameInterval paces the animation at roughly 30 fps
	FrameInterval = 33 * time.Millisecond
)

// Screen rows
const (
	rowTitle   = 1
	rowTop     = 3
	rowStrip   = 4
	rowBottom  = 5
	rowTrigger = 7
	rowMessage = 8
	rowGifts   = 10
)

var errNoTerminal = errors.New("output is not a terminal")

// SizeFunc reports the terminal width and height in columns and rows
type SizeFunc func() (width, height int, err error)

// TerminalSize measures the terminal behind fd
func TerminalSize(fd int) SizeFunc {
	return func() (int, int, error) {
		if !term.IsTerminal(fd) {
			return 0, 0, errNoTerminal
		}
		return term.GetSize(fd)
	}
}

// Option configures a Screen
type Option func(*Screen)

// WithSize overrides how the terminal is measured
func WithSize(size SizeFunc) Option {
	return func(s *Screen) {
		s.size = size
	}
}

// WithFrameInterval sets the animation tick
func WithFrameInterval(d time.Duration) Option {
	return func(s *Screen) {
		s.frame = d
	}
}

// WithTitle sets the heading line
func WithTitle(title string) Option {
	return func(s *Screen) {
		s.title = title
	}
}

// Screen owns the terminal. It implements strip.Measurer, spinner.Renderer and
// spinner.View; all drawing is serialized by mu.
type Screen struct {
	mu    sync.Mutex
	out   io.Writer
	size  SizeFunc
	frame time.Duration
	title string

	layout   *strip.Layout
	position float64
	width    int

	anim   chan struct{}
	closed bool
}

// New creates a screen writing to out and measuring os.Stdout
func New(out io.Writer, opts ...Option) *Screen {
	s := &Screen{
		out:   out,
		size:  TerminalSize(int(os.Stdout.Fd())),
		frame: FrameInterval,
		title: "Prize Wheel",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Measure reads the live terminal width. The whole width is the viewport.
func (s *Screen) Measure() (strip.Geometry, error) {
	w, _, err := s.size()
	if err != nil {
		return strip.Geometry{}, fmt.Errorf("measure terminal: %w", err)
	}
	return strip.Geometry{TileWidth: TileWidth, ViewportWidth: float64(w)}, nil
}

// Open clears the terminal and draws the static frame
func (s *Screen) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, hideCursor+clearScreen)
	s.writeRow(rowTitle, bold+magenta+s.title+reset)
	s.drawStripLocked()
}

// Close stops any running animation and restores the cursor
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopAnimationLocked()
	fmt.Fprintf(s.out, "\033[%d;1H%s\n", rowGifts+maxGiftRows+2, showCursor)
}

// writeRow replaces one screen row. Caller holds mu.
func (s *Screen) writeRow(row int, text string) {
	fmt.Fprintf(s.out, "\033[%d;1H%s%s", row, clearLine, text)
}

// tileText renders a prize as exactly CellWidth columns
func tileText(p models.Prize) string {
	label := p.Name
	if p.IsWin() {
		label = fmt.Sprintf("%s %d★", p.Name, p.StarPrice)
	}
	return fit("["+label+"]", CellWidth)
}

// fit truncates or centers s to width columns
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-2]) + "…]"
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// stripLine renders the visible window of the strip translated left by position columns
func stripLine(tiles []models.Prize, position float64, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range tiles {
		b.WriteString(strings.Repeat(" ", Margin))
		b.WriteString(tileText(p))
		b.WriteString(strings.Repeat(" ", Margin))
	}
	line := []rune(b.String())

	shift := int(position + 0.5)
	if shift < 0 {
		shift = 0
	}
	if shift > len(line) {
		shift = len(line)
	}
	end := shift + width
	if end > len(line) {
		end = len(line)
	}
	visible := string(line[shift:end])
	if pad := width - (end - shift); pad > 0 {
		visible += strings.Repeat(" ", pad)
	}
	return visible
}

// markerLine points at the middle of the center slot
func markerLine(l *strip.Layout, width int, glyph string) string {
	col := l.CenterIndex*TileWidth + TileWidth/2
	if col >= width {
		col = width - 1
	}
	if col < 0 {
		return ""
	}
	return strings.Repeat(" ", col) + yellow + glyph + reset
}

// drawStripLocked redraws the strip rows at the current position. Caller holds mu.
func (s *Screen) drawStripLocked() {
	if s.layout == nil {
		return
	}
	s.writeRow(rowTop, markerLine(s.layout, s.width, "▼"))
	s.writeRow(rowStrip, stripLine(s.layout.Tiles, s.position, s.width))
	s.writeRow(rowBottom, markerLine(s.layout, s.width, "▲"))
}
