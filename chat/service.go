package chat

import (
	"context"
	"fmt"
	"time"

	"searchbot/cache"
	"searchbot/config"
	"searchbot/conversation"
	"searchbot/events"
	"searchbot/responder"
	"searchbot/types"

	"github.com/rs/zerolog"
)

// State is a step of one request cycle
type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateAggregated State = "aggregated"
	StateResponding State = "responding"
	StateRecorded   State = "recorded"
)

// Aggregator produces the combined web content for a query
type Aggregator interface {
	Aggregate(ctx context.Context, query string) string
}

// Reply is the result of one request cycle. On failure Text is empty and
// Outcome says why; the caller picks what to show the user.
type Reply struct {
	Query   string            `json:"query"`
	Text    string            `json:"reply"`
	Outcome responder.Outcome `json:"outcome"`
	Err     error             `json:"-"`
	Content string            `json:"-"`
	Cached  bool              `json:"cached"`
	History []types.Turn      `json:"history"`
}

// Options holds the optional collaborators of a Service
type Options struct {
	Cache     cache.Cache
	Publisher events.Publisher
	Logger    *zerolog.Logger
	// OnState, if set, is called on every state transition
	OnState func(sessionID string, state State)
}

// Service runs request cycles: aggregate, ask the model, record the exchange
type Service struct {
	aggregator Aggregator
	generator  responder.Generator
	sessions   *conversation.Store
	cache      cache.Cache
	publisher  events.Publisher
	onState    func(string, State)
	log        zerolog.Logger
}

// NewService wires a Service. sessions may be nil, in which case a store with
// the default turn cap is created.
func NewService(agg Aggregator, gen responder.Generator, sessions *conversation.Store, opts Options) *Service {
	if sessions == nil {
		sessions = conversation.NewStore(config.DefaultMaxTurns)
	}
	if gen == nil {
		gen = responder.Unconfigured{}
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "chat").Logger()
	}
	return &Service{
		aggregator: agg,
		generator:  gen,
		sessions:   sessions,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		onState:    opts.OnState,
		log:        log,
	}
}

// Sessions exposes the session store
func (s *Service) Sessions() *conversation.Store { return s.sessions }

// History returns the session's turns, or nil for an unknown session
func (s *Service) History(sessionID string) []types.Turn {
	c, ok := s.sessions.Peek(sessionID)
	if !ok {
		return nil
	}
	return c.AllTurns()
}

// Reset drops the session's conversation
func (s *Service) Reset(sessionID string) {
	s.sessions.Delete(sessionID)
}

// Ask runs one full cycle for query within the given session. It never fails:
// retrieval problems degrade to empty content and model failures are reported
// through Reply.Outcome. A failed cycle records nothing.
func (s *Service) Ask(ctx context.Context, sessionID, query string) Reply {
	log := s.log.With().Str("session", sessionID).Logger()
	defer s.transition(sessionID, StateIdle)

	s.transition(sessionID, StateFetching)
	content, cached := s.retrieve(ctx, query, log)
	s.transition(sessionID, StateAggregated)
	log.Debug().Int("content_len", len(content)).Bool("cached", cached).Msg("Web content aggregated")

	convo := s.sessions.Get(sessionID)
	prompt := responder.ComposePrompt(query, content, convo.History())

	s.transition(sessionID, StateResponding)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		outcome := responder.Classify(err)
		log.Error().Err(err).Str("outcome", string(outcome)).Msg("Error generating LLM response")
		return Reply{
			Query:   query,
			Outcome: outcome,
			Err:     err,
			Content: content,
			Cached:  cached,
			History: convo.AllTurns(),
		}
	}

	convo.RecordExchange(query, text)
	s.transition(sessionID, StateRecorded)
	// the exchange is already recorded; a client hanging up must not drop its event
	s.publish(context.WithoutCancel(ctx), events.Exchange{
		SessionID:   sessionID,
		Query:       query,
		Reply:       text,
		ContentSize: len(content),
		Cached:      cached,
		CompletedAt: time.Now().UTC(),
	}, log)

	return Reply{
		Query:   query,
		Text:    text,
		Outcome: responder.OutcomeOK,
		Content: content,
		Cached:  cached,
		History: convo.AllTurns(),
	}
}

func (s *Service) retrieve(ctx context.Context, query string, log zerolog.Logger) (string, bool) {
	if s.cache != nil {
		content, ok, err := s.cache.Get(ctx, query)
		if err != nil {
			log.Warn().Err(err).Msg("Retrieval cache lookup failed")
		} else if ok {
			return content, true
		}
	}

	content := s.aggregator.Aggregate(ctx, query)

	// empty results are not cached so a transient outage is not remembered
	if s.cache != nil && content != "" {
		if err := s.cache.Set(ctx, query, content); err != nil {
			log.Warn().Err(err).Msg("Retrieval cache store failed")
		}
	}
	return content, false
}

func (s *Service) generate(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("response generator panicked: %v", r)
		}
	}()
	text, err = s.generator.Generate(ctx, responder.Request{
		Operation: config.ChatOperation,
		Prompt:    prompt,
	})
	if err != nil {
		return "", err
	}
	return responder.CleanReply(text), nil
}

func (s *Service) publish(ctx context.Context, ex events.Exchange, log zerolog.Logger) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExchange(ctx, ex); err != nil {
		log.Warn().Err(err).Msg("Failed to publish exchange event")
	}
}

func (s *Service) transition(sessionID string, state State) {
	if s.onState != nil {
		s.onState(sessionID, state)
	}
}
