package termview

import (
	"fmt"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// maxGiftRows caps the inventory listing; older gifts are summarized
const maxGiftRows = 8

// SetTrigger shows whether a spin can be requested
func (s *Screen) SetTrigger(enabled bool, attemptsLeft int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case enabled:
		s.writeRow(rowTrigger, fmt.Sprintf("%s[space] Spin! (%d left)%s  %s[r] refresh  [q] quit%s", green+bold, attemptsLeft, reset, dim, reset))
	case attemptsLeft <= 0:
		s.writeRow(rowTrigger, fmt.Sprintf("%sNo attempts left%s  %s[r] refresh  [q] quit%s", yellow, reset, dim, reset))
	default:
		s.writeRow(rowTrigger, fmt.Sprintf("%sSpinning...%s", dim, reset))
	}
}

// ShowWin reveals a prize
func (s *Screen) ShowWin(prize models.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRow(rowMessage, fmt.Sprintf("%s★ You won %s (%d★)! ★%s", bold+magenta, prize.Name, prize.StarPrice, reset))
}

// ShowNoWin reports a spin that landed on an empty slot
func (s *Screen) ShowNoWin(prize models.Prize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRow(rowMessage, fmt.Sprintf("%sNo luck this time (%s).%s", cyan, prize.Name, reset))
}

// ShowError surfaces an error on the message row
func (s *Screen) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRow(rowMessage, fmt.Sprintf("%sError: %v%s", red, err, reset))
}

// ShowGifts lists the inventory, newest first
func (s *Screen) ShowGifts(gifts []models.Gift) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeRow(rowGifts, fmt.Sprintf("%sMy gifts (%d)%s", bold, len(gifts), reset))
	for i := 0; i < maxGiftRows; i++ {
		row := rowGifts + 1 + i
		idx := len(gifts) - 1 - i
		switch {
		case idx >= 0 && i == maxGiftRows-1 && idx > 0:
			s.writeRow(row, fmt.Sprintf("  %s... and %d more%s", dim, idx+1, reset))
		case idx >= 0:
			g := gifts[idx]
			s.writeRow(row, fmt.Sprintf("  %-16s %4d★  %s%s%s", g.Name, g.StarPrice, dim, g.Date, reset))
		default:
			s.writeRow(row, "")
		}
	}
}
