package settler

import (
	"context"
	"sync"
	"time"

	"github.com/foresight-hq/foresight-settler/pkg/config"
	"github.com/foresight-hq/foresight-settler/pkg/ledger"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

// mockLedger is a test double for the on-chain gateway
type mockLedger struct {
	mu          sync.Mutex
	pendingIDs  []string
	pendingErr  error
	intents     map[string]*models.Intent
	notifyErr   error
	completions []models.Completion
}

func newMockLedger() *mockLedger {
	return &mockLedger{intents: make(map[string]*models.Intent)}
}

func (m *mockLedger) PendingIntentIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pendingErr != nil {
		return nil, m.pendingErr
	}
	return append([]string(nil), m.pendingIDs...), nil
}

func (m *mockLedger) GetIntent(_ context.Context, intentID string) (*models.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if intent, ok := m.intents[intentID]; ok {
		return intent, nil
	}
	return nil, ledger.ErrIntentNotFound
}

func (m *mockLedger) NotifyCompletion(_ context.Context, completion models.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.completions = append(m.completions, completion)
	return nil
}

func (m *mockLedger) addIntent(intent *models.Intent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[intent.ID] = intent
	m.pendingIDs = append(m.pendingIDs, intent.ID)
}

func (m *mockLedger) setPendingIDs(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingIDs = ids
}

func (m *mockLedger) Completions() []models.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Completion(nil), m.completions...)
}

// mockMatching is a test double for the matching engine gateway. Queued
// submit errors are consumed one per call; once drained, submissions succeed
// and return the configured trades.
type mockMatching struct {
	mu          sync.Mutex
	healthErr   error
	submitErrs  []error
	trades      []models.Trade
	orders      []*models.Order
	blockSubmit chan struct{}
}

func (m *mockMatching) Health(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthErr
}

func (m *mockMatching) SubmitOrder(_ context.Context, order *models.Order) ([]models.Trade, error) {
	m.mu.Lock()
	m.orders = append(m.orders, order)
	var err error
	if len(m.submitErrs) > 0 {
		err = m.submitErrs[0]
		m.submitErrs = m.submitErrs[1:]
	}
	block := m.blockSubmit
	trades := append([]models.Trade(nil), m.trades...)
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func (m *mockMatching) setHealthErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthErr = err
}

func (m *mockMatching) queueErrors(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErrs = append(m.submitErrs, errs...)
}

func (m *mockMatching) SubmitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *mockMatching) Orders() []*models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Order(nil), m.orders...)
}

// testConfig returns a config with a fast, jitter-free retry schedule so
// tests never sleep on the backoff curve unless they mean to
func testConfig() *config.Config {
	return &config.Config{
		MatchingEndpoint: "http://127.0.0.1:0",
		PollingInterval:  time.Second,
		SweepInterval:    time.Second,
		HealthInterval:   time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: time.Millisecond,
			MaxDelay:     10 * time.Millisecond,
			Factor:       2.0,
		},
		IntentExpiry: time.Hour,
	}
}

func newTestService(ml *mockLedger, mm *mockMatching) *Service {
	return NewService(testConfig(), ml, mm, &logger.EmptyLogger{})
}

func newTestServiceWithConfig(cfg *config.Config, ml *mockLedger, mm *mockMatching) *Service {
	return NewService(cfg, ml, mm, &logger.EmptyLogger{})
}

func testIntent(id string) *models.Intent {
	return &models.Intent{
		ID:          id,
		User:        "0x1111111111111111111111111111111111111111",
		MarketID:    "0x6d61726b65742d31000000000000000000000000000000000000000000000000",
		ConditionID: "0x636f6e642d310000000000000000000000000000000000000000000000000000",
		Kind:        models.KindBuyShares,
		Outcome:     1,
		Amount:      "1000000",
		MaxPrice:    54000,
		MinPrice:    models.PriceUnset,
		Style:       models.StyleLimit,
	}
}
