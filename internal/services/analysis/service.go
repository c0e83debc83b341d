package analysis

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockresearch/internal/agents"
	"stockresearch/internal/metrics"
	"stockresearch/pkg/errors"
)

// DefaultQuery is used when the caller does not supply one.
const DefaultQuery = "Provide comprehensive stock analysis and trading recommendations for promising " +
	"NSE-listed stocks suitable for short-term trading in the current market conditions."

// Pipeline streams the chunks of one analysis run.
type Pipeline interface {
	Run(ctx context.Context, query string) iter.Seq2[*agents.Chunk, error]
}

// Config tunes the service.
type Config struct {
	DefaultQuery string
	// Timeout bounds a whole run; zero means no deadline.
	Timeout time.Duration
}

// Service runs analysis sessions end to end (application layer).
type Service struct {
	pipeline Pipeline
	tracker  errors.Tracker
	cfg      Config
	now      func() time.Time
}

// NewService creates the analysis service.
func NewService(pipeline Pipeline, tracker errors.Tracker, cfg Config) (*Service, error) {
	if pipeline == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "pipeline is required")
	}
	if strings.TrimSpace(cfg.DefaultQuery) == "" {
		cfg.DefaultQuery = DefaultQuery
	}
	return &Service{
		pipeline: pipeline,
		tracker:  tracker,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Analyze runs one session and collects every streamed chunk.
// Streaming failures are logged, reported and returned unchanged.
func (s *Service) Analyze(ctx context.Context, query string) (*agents.AnalysisResult, error) {
	sessionID := uuid.New().String()
	ctx = agents.WithSession(ctx, agents.SessionContext{
		SessionID: sessionID,
		AgentID:   agents.AgentSupervisor,
	})
	log := agents.LoggerFor(ctx)

	if strings.TrimSpace(query) == "" {
		query = s.cfg.DefaultQuery
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	log.Infow("Starting stock analysis session", "query", query)
	start := s.now()

	var chunks []*agents.Chunk
	for chunk, err := range s.pipeline.Run(ctx, query) {
		if err != nil {
			s.fail(ctx, sessionID, err)
			metrics.RecordAnalysis(time.Since(start), err)
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	var messages []agents.Message
	if n := len(chunks); n > 0 {
		messages = chunks[n-1].Transcript
	}

	metrics.RecordAnalysis(time.Since(start), nil)
	log.Infow("Analysis session completed", "chunks", len(chunks), "messages", len(messages))

	return &agents.AnalysisResult{
		SessionID: sessionID,
		Status:    agents.StatusCompleted,
		Timestamp: s.now(),
		Messages:  messages,
		RawOutput: chunks,
	}, nil
}

func (s *Service) fail(ctx context.Context, sessionID string, err error) {
	agents.LoggerFor(ctx).Errorw("Error during stock analysis", "error", err)
	if s.tracker == nil {
		return
	}
	_ = s.tracker.CaptureError(ctx, err, map[string]string{
		"session_id": sessionID,
		"agent":      string(agents.SessionFrom(ctx).AgentID),
	})
}
