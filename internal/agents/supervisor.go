package agents

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"stockresearch/pkg/errors"
)

// State is the lifecycle state of the research pipeline.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateRunning
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateInitializing:  "initializing",
	StateReady:         "ready",
	StateRunning:       "running",
	StateCompleted:     "completed",
	StateFailed:        "failed",
}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Coordinator drives the pipeline agents in hand-off order for one query.
type Coordinator interface {
	Run(ctx context.Context, sc SessionContext, query string) iter.Seq2[*Chunk, error]
}

// CoordinatorBuilder compiles agent specs into a coordinator. brief is the supervisor's
// workflow contract shared with every agent.
type CoordinatorBuilder func(ctx context.Context, specs []AgentSpec, brief string) (Coordinator, error)

// Supervisor lazily builds the pipeline once per process and runs queries through it.
type Supervisor struct {
	factory *Factory
	build   CoordinatorBuilder

	mu          sync.Mutex // guards initialization
	coordinator Coordinator

	toolCount   atomic.Int64
	state       atomic.Int32
	initialized atomic.Bool
}

// NewSupervisor creates a supervisor; nothing is built until the first Initialize or Run.
func NewSupervisor(factory *Factory, build CoordinatorBuilder) (*Supervisor, error) {
	if factory == nil {
		return nil, errors.Wrap(errors.ErrInitialization, "agent factory is required")
	}
	if build == nil {
		return nil, errors.Wrap(errors.ErrInitialization, "coordinator builder is required")
	}
	return &Supervisor{factory: factory, build: build}, nil
}

// Initialize builds the agent specs and the coordinator. It is safe for concurrent use;
// after a success later calls return immediately, after a failure the next call retries.
func (s *Supervisor) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coordinator != nil {
		return nil
	}

	ctx = WithAgent(ctx, AgentSupervisor)
	log := LoggerFor(ctx)
	log.Info("Initializing stock research pipeline")
	s.setState(StateInitializing)

	coordinator, toolCount, err := s.compile(ctx)
	if err != nil {
		s.setState(StateFailed)
		log.Errorw("Pipeline initialization failed", "error", err)
		return err
	}

	s.coordinator = coordinator
	s.initialized.Store(true)
	s.toolCount.Store(int64(toolCount))
	s.setState(StateReady)
	log.Infow("Stock research pipeline initialized", "agents", len(PipelineOrder), "tool_count", toolCount)
	return nil
}

func (s *Supervisor) compile(ctx context.Context) (Coordinator, int, error) {
	specs, err := s.factory.CreateAgentSpecs(ctx)
	if err != nil {
		return nil, 0, err
	}

	brief, err := s.factory.Prompts().SupervisorBrief()
	if err != nil {
		return nil, 0, errors.Mark(errors.ErrInitialization, err, "supervisor prompt")
	}

	LoggerFor(ctx).Info("Creating supervisor")
	coordinator, err := s.build(ctx, specs, brief)
	if err != nil {
		return nil, 0, errors.Mark(errors.ErrInitialization, err, "compile coordinator")
	}

	toolCount := 0
	if len(specs) > 0 {
		toolCount = len(specs[0].Tools)
	}
	return coordinator, toolCount, nil
}

// Run initializes the pipeline if needed and streams the coordinator's chunks for query.
// The first error ends the stream; nothing is retried.
func (s *Supervisor) Run(ctx context.Context, query string) iter.Seq2[*Chunk, error] {
	return func(yield func(*Chunk, error) bool) {
		if err := s.Initialize(ctx); err != nil {
			yield(nil, err)
			return
		}

		s.mu.Lock()
		coordinator := s.coordinator
		s.mu.Unlock()

		s.setState(StateRunning)
		for chunk, err := range coordinator.Run(ctx, SessionFrom(ctx), query) {
			if err != nil {
				s.setState(StateFailed)
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				s.setState(StateFailed)
				return
			}
		}
		s.setState(StateCompleted)
	}
}

// State returns the current pipeline state.
func (s *Supervisor) State() State { return State(s.state.Load()) }

// StateName returns the current state for metrics.
func (s *Supervisor) StateName() string { return s.State().String() }

// Initialized reports whether a coordinator has been built. It stays true after failed runs.
func (s *Supervisor) Initialized() bool { return s.initialized.Load() }

// ToolCount returns the number of tools bound to each agent, zero before initialization.
func (s *Supervisor) ToolCount() int { return int(s.toolCount.Load()) }

func (s *Supervisor) setState(st State) { s.state.Store(int32(st)) }
