package outcome

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// MockClient is an in-memory authority for tests. Without queued outcomes it plays
// the catalog round-robin and decrements its own attempt count.
type MockClient struct {
	mu            sync.Mutex
	baseURL       string
	catalog       []models.Prize
	attemptsLeft  int
	gifts         []models.Gift
	outcomes      []models.SpinResult
	next          int
	announceErr   error
	statusErr     error
	spinErr       error
	catalogErr    error
	spinGate      chan struct{}
	spinStarted   chan struct{}
	announceCalls int
	statusCalls   int
	spinCalls     int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCatalog sets the prizes returned by FetchCatalog and played by Spin
func WithCatalog(prizes []models.Prize) MockOption {
	return func(m *MockClient) {
		m.catalog = prizes
	}
}

// WithAttempts sets the starting attempts left
func WithAttempts(n int) MockOption {
	return func(m *MockClient) {
		m.attemptsLeft = n
	}
}

// WithGifts sets the gifts returned by FetchStatus
func WithGifts(gifts []models.Gift) MockOption {
	return func(m *MockClient) {
		m.gifts = gifts
	}
}

// WithOutcomes queues spin results returned in order before falling back to round-robin
func WithOutcomes(results ...models.SpinResult) MockOption {
	return func(m *MockClient) {
		m.outcomes = append(m.outcomes, results...)
	}
}

// WithAnnounceError sets an error to return from Announce
func WithAnnounceError(err error) MockOption {
	return func(m *MockClient) {
		m.announceErr = err
	}
}

// WithStatusError sets an error to return from FetchStatus
func WithStatusError(err error) MockOption {
	return func(m *MockClient) {
		m.statusErr = err
	}
}

// WithSpinError sets an error to return from Spin
func WithSpinError(err error) MockOption {
	return func(m *MockClient) {
		m.spinErr = err
	}
}

// WithCatalogError sets an error to return from FetchCatalog
func WithCatalogError(err error) MockOption {
	return func(m *MockClient) {
		m.catalogErr = err
	}
}

// WithSpinGate makes Spin block until gate is closed or receives. started is
// signalled once Spin has been entered.
func WithSpinGate(gate chan struct{}, started chan struct{}) MockOption {
	return func(m *MockClient) {
		m.spinGate = gate
		m.spinStarted = started
	}
}

// NewMockClient creates a new mock outcome client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:      "http://mock-outcome.local",
		catalog:      DefaultMockCatalog(),
		attemptsLeft: 2,
		gifts:        []models.Gift{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultMockCatalog returns a small catalog with one empty slot
func DefaultMockCatalog() []models.Prize {
	return []models.Prize{
		{Name: "Empty", StarPrice: 0},
		{Name: "Rose", StarPrice: 25, Img: "/static/img/rose.png"},
		{Name: "Trophy", StarPrice: 100, Img: "/static/img/trophy.png"},
	}
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// Announce records the call
func (m *MockClient) Announce(ctx context.Context, userID int64) (*AnnounceResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announceCalls++
	if m.announceErr != nil {
		return nil, m.announceErr
	}
	return &AnnounceResponse{Status: "ok", Message: "acknowledged"}, nil
}

// FetchStatus returns the current mock state
func (m *MockClient) FetchStatus(ctx context.Context, userID int64) (*models.UserStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	gifts := make([]models.Gift, len(m.gifts))
	copy(gifts, m.gifts)
	return &models.UserStatus{AttemptsLeft: m.attemptsLeft, Gifts: gifts}, nil
}

// Spin returns the next queued outcome, or plays the catalog round-robin
func (m *MockClient) Spin(ctx context.Context, userID int64) (*models.SpinResult, error) {
	m.mu.Lock()
	m.spinCalls++
	gate, started := m.spinGate, m.spinStarted
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.spinErr != nil {
		return nil, m.spinErr
	}

	if len(m.outcomes) > 0 {
		result := m.outcomes[0]
		m.outcomes = m.outcomes[1:]
		m.attemptsLeft = result.AttemptsLeft
		m.recordGift(result.WonPrize)
		return &result, nil
	}

	if m.attemptsLeft <= 0 {
		return nil, &APIError{Status: http.StatusForbidden, Code: CodeNoAttempts, Message: "No attempts left"}
	}
	m.attemptsLeft--
	prize := m.catalog[m.next%len(m.catalog)]
	m.next++
	m.recordGift(prize)
	return &models.SpinResult{WonPrize: prize, AttemptsLeft: m.attemptsLeft}, nil
}

func (m *MockClient) recordGift(p models.Prize) {
	if !p.IsWin() {
		return
	}
	m.gifts = append(m.gifts, models.Gift{
		Name:      p.Name,
		StarPrice: p.StarPrice,
		Img:       p.Img,
		Date:      time.Now().Format("02.01.2006"),
	})
}

// FetchCatalog returns the configured catalog
func (m *MockClient) FetchCatalog(ctx context.Context) ([]models.Prize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.catalogErr != nil {
		return nil, m.catalogErr
	}
	out := make([]models.Prize, len(m.catalog))
	copy(out, m.catalog)
	return out, nil
}

// SpinCalls returns how many times Spin was called
func (m *MockClient) SpinCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spinCalls
}

// AnnounceCalls returns how many times Announce was called
func (m *MockClient) AnnounceCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.announceCalls
}

// StatusCalls returns how many times FetchStatus was called
func (m *MockClient) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

// SetSpinError changes the error returned by Spin
func (m *MockClient) SetSpinError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spinErr = err
}

// SetAttempts changes the attempts left, as an admin grant would
func (m *MockClient) SetAttempts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attemptsLeft = n
}

// SetStatusError changes the error returned by FetchStatus
func (m *MockClient) SetStatusError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErr = err
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
