package factory

import (
	"time"

	"github.com/mcoot/roomhub/internal/dependencies/mocks"
	"github.com/mcoot/roomhub/internal/storage/memory"
	"github.com/mcoot/roomhub/internal/testutil"
	"github.com/mcoot/roomhub/internal/web/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	MockIdentity *mocks.MockIdentity
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIdentity := mocks.NewMockIdentity()

	app := newWithDependencies(store, mockClock, mockRandom, mockIdentity, ws.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MockIdentity: mockIdentity,
	}
}
