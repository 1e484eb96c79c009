package application

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// ClientState is the one piece of session-scoped mutable state in the
// pipeline: whether the local client has been confirmed incompatible.
// The transition is monotonic and never reversed within the process.
type ClientState struct {
	localDisabled atomic.Bool
}

func NewClientState() *ClientState {
	return &ClientState{}
}

func (s *ClientState) DisableLocal() {
	s.localDisabled.Store(true)
}

func (s *ClientState) LocalDisabled() bool {
	return s.localDisabled.Load()
}

// ClientSelector picks the model client for one request. The cloud client
// is built lazily from configuration; when no credential is configured the
// factory returns nil and Select returns nil, which the dispatcher turns
// into a configuration outcome.
type ClientSelector struct {
	state        *ClientState
	local        ModelClient // nil when no local deployment
	cloudFactory func() ModelClient
	logger       *slog.Logger

	gateLog sync.Once
	mu      sync.Mutex
	cloud   ModelClient
}

func NewClientSelector(state *ClientState, local ModelClient, cloudFactory func() ModelClient, logger *slog.Logger) *ClientSelector {
	return &ClientSelector{
		state:        state,
		local:        local,
		cloudFactory: cloudFactory,
		logger:       logger,
	}
}

// Select routes to the local client only when one is deployed, it has not
// been disabled for this session, and it structurally supports tool calls.
// The configured local model has no function calling at all, so in practice
// this is a capability gate decided here, not probed at runtime.
func (s *ClientSelector) Select() ModelClient {
	if s.local != nil && !s.state.LocalDisabled() {
		if s.local.SupportsToolCalls() {
			return s.local
		}
		s.gateLog.Do(func() {
			s.logger.Info("local model lacks tool calling, routing to cloud",
				"local", s.local.Name())
		})
	}
	return s.cloudClient()
}

func (s *ClientSelector) cloudClient() ModelClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cloud == nil && s.cloudFactory != nil {
		s.cloud = s.cloudFactory()
	}
	return s.cloud
}
