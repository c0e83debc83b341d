package workflows

import (
	"context"
	"iter"
	"slices"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"stockresearch/internal/agents"
	"stockresearch/internal/agents/state"
	"stockresearch/internal/metrics"
	"stockresearch/pkg/errors"
)

// ResearchPipeline runs the sequential workflow and turns ADK events into transcript chunks.
// Each agent's events are framed by hand-off messages to and from the supervisor.
type ResearchPipeline struct {
	appName  string
	userID   string
	runner   *runner.Runner
	sessions session.Service
	brief    string
}

var _ agents.Coordinator = (*ResearchPipeline)(nil)

// Run streams the chunks of one analysis. The brief and the query form the kick-off message.
func (p *ResearchPipeline) Run(ctx context.Context, sc agents.SessionContext, query string) iter.Seq2[*agents.Chunk, error] {
	return func(yield func(*agents.Chunk, error) bool) {
		if sc.SessionID == "" {
			sc.SessionID = uuid.New().String()
		}
		sc.AgentID = agents.AgentSupervisor
		ctx = agents.WithSession(ctx, sc)
		log := agents.LoggerFor(ctx)

		if _, err := p.sessions.Create(ctx, &session.CreateRequest{
			AppName:   p.appName,
			UserID:    p.userID,
			SessionID: sc.SessionID,
			State:     map[string]any{state.KeyQuery: query},
		}); err != nil {
			yield(nil, errors.Wrap(err, "failed to create session"))
			return
		}
		defer func() {
			if err := p.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
				AppName:   p.appName,
				UserID:    p.userID,
				SessionID: sc.SessionID,
			}); err != nil {
				log.Warnw("Failed to delete session", "error", err)
			}
		}()

		s := &stream{transcript: agents.NewTranscript(), yield: yield}
		s.transcript.Append(&agents.ChatMessage{Role: agents.RoleUser, Agent: "user", Text: query})

		log.Info("Starting supervisor execution")
		kickoff := &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: p.brief}, {Text: query}},
		}
		runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

		for event, err := range p.runner.Run(ctx, p.userID, sc.SessionID, kickoff, runConfig) {
			if err != nil {
				yield(nil, err)
				return
			}
			if event == nil || event.LLMResponse.Partial {
				continue
			}
			if !s.handle(ctx, event) {
				return
			}
		}

		if !s.handBack() {
			return
		}
		log.Infow("Supervisor execution completed", "total_chunks", s.index)
	}
}

// stream tracks the active agent and the transcript while events arrive.
type stream struct {
	transcript *agents.Transcript
	yield      func(*agents.Chunk, error) bool
	active     agents.AgentType
	position   int
	index      int
}

func (s *stream) handle(ctx context.Context, event *session.Event) bool {
	var msgs []agents.Message

	author := agents.AgentType(event.Author)
	if pos := slices.Index(agents.PipelineOrder, author); pos >= 0 && author != s.active {
		if s.active != "" && pos < s.position {
			s.yield(nil, errors.Wrapf(errors.ErrInternal, "hand-off order violated: %s after %s", author, s.active))
			return false
		}
		if s.active != "" {
			msgs = append(msgs, agents.HandoffMessage{From: s.active, To: agents.AgentSupervisor})
		}
		msgs = append(msgs, agents.HandoffMessage{From: agents.AgentSupervisor, To: author})
		agents.LoggerFor(agents.WithAgent(ctx, author)).Infof("Transferring to %s", author)
		s.active = author
		s.position = pos
	}

	if msg := agents.MessageFromContent(event.Author, event.LLMResponse.Content); msg != nil {
		msgs = append(msgs, msg)
	}
	return s.emit(event.Author, msgs)
}

// handBack closes the last agent's turn.
func (s *stream) handBack() bool {
	if s.active == "" {
		return true
	}
	last := s.active
	s.active = ""
	return s.emit(string(agents.AgentSupervisor), []agents.Message{agents.HandoffMessage{From: last, To: agents.AgentSupervisor}})
}

func (s *stream) emit(author string, msgs []agents.Message) bool {
	if len(msgs) == 0 {
		return true
	}
	s.transcript.Append(msgs...)
	chunk := &agents.Chunk{
		Index:      s.index,
		Author:     author,
		Messages:   msgs,
		Transcript: s.transcript.Snapshot(),
	}
	s.index++
	metrics.RecordChunk()
	return s.yield(chunk, nil)
}
