package services_test

import (
	"sync"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	statuses map[int64]models.UserStatus
	open     []bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{statuses: make(map[int64]models.UserStatus)}
}

func (b *recordingBroadcaster) BroadcastUserStatus(userID int64, status models.UserStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[userID] = status
}

func (b *recordingBroadcaster) BroadcastSpinsStatus(open bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = append(b.open, open)
}

func (b *recordingBroadcaster) status(userID int64) (models.UserStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.statuses[userID]
	return s, ok
}
