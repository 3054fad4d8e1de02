// internal/engine/engine.go

// Package engine owns the turn-based workflow: after every user message it
// decides whether to ask a follow-up, run a search, or route to selection,
// then ends the turn. Suspension is not a blocking wait; the next inbound
// message resumes from the conversation history.
package engine

import (
	"context"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/common/config"
	stderrors "github.com/SaiffMoh/FastTravelGraph/internal/common/errors"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/logger"
	"github.com/SaiffMoh/FastTravelGraph/internal/common/metrics"
	"github.com/SaiffMoh/FastTravelGraph/internal/models"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/buildrequest"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/extract"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/format"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/hotels"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/search"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/selection"
	"github.com/SaiffMoh/FastTravelGraph/internal/steps/summarize"
	"github.com/SaiffMoh/FastTravelGraph/internal/store"
)

// TokenProvider is the auth gateway consumed at its interface boundary.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Archiver records completed searches; implementations must be best-effort.
type Archiver interface {
	Record(ctx context.Context, threadID string, fields models.NormalizedFields, offers []models.Offer)
}

// TurnRecorder receives per-turn instrumentation; the OTel meter in
// internal/common/observability satisfies it.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, phase string)
	RecordTurnDuration(ctx context.Context, duration time.Duration, phase string)
}

// Engine wires the workflow steps into the turn state machine.
type Engine struct {
	cfg config.EngineConfig

	extract   *extract.Handler
	validate  Validator
	builder   *buildrequest.Builder
	search    *search.Handler
	format    *format.Handler
	summarize *summarize.Handler
	selection *selection.Handler
	hotels    *hotels.Handler

	tokens        TokenProvider
	conversations store.ConversationStore
	offers        store.OfferCache
	archive       Archiver
	recorder      TurnRecorder

	errs   *stderrors.Handler
	logger logger.Logger

	defaultCabin    string
	defaultDuration int
}

// Validator is what the engine needs from the validate step.
type Validator interface {
	Execute(ctx context.Context, state *models.ConversationState)
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Extract   *extract.Handler
	Validate  Validator
	Builder   *buildrequest.Builder
	Search    *search.Handler
	Format    *format.Handler
	Summarize *summarize.Handler
	Selection *selection.Handler
	Hotels    *hotels.Handler

	Tokens        TokenProvider
	Conversations store.ConversationStore
	Offers        store.OfferCache
	Archive       Archiver
	Recorder      TurnRecorder

	Logger logger.Logger
}

func New(cfg config.EngineConfig, searchCfg config.SearchConfig, deps Deps) *Engine {
	return &Engine{
		cfg:             cfg,
		extract:         deps.Extract,
		validate:        deps.Validate,
		builder:         deps.Builder,
		search:          deps.Search,
		format:          deps.Format,
		summarize:       deps.Summarize,
		selection:       deps.Selection,
		hotels:          deps.Hotels,
		tokens:          deps.Tokens,
		conversations:   deps.Conversations,
		offers:          deps.Offers,
		archive:         deps.Archive,
		recorder:        deps.Recorder,
		errs:            stderrors.NewHandler(deps.Logger),
		logger:          deps.Logger.With(map[string]interface{}{"component": "engine"}),
		defaultCabin:    searchCfg.DefaultCabin,
		defaultDuration: searchCfg.DefaultDuration,
	}
}

// RunTurn processes one user message to completion or to a suspension point
// and returns exactly one outcome.
func (e *Engine) RunTurn(ctx context.Context, threadID, message string) *models.TurnResponse {
	started := time.Now()

	history, err := e.conversations.Get(ctx, threadID)
	if err != nil {
		e.logger.Warn("conversation load failed", map[string]interface{}{
			"threadId": threadID,
			"error":    err.Error(),
		})
	}
	if err := e.conversations.Append(ctx, threadID, models.Message{Role: "user", Content: message}); err != nil {
		e.logger.Warn("conversation append failed", map[string]interface{}{
			"threadId": threadID,
			"error":    err.Error(),
		})
	}

	state := models.NewConversationState(threadID, history, message)
	state.Control.FollowupCount = countFollowups(history)

	resp := e.run(ctx, state)
	resp.Trace = state.Control.Trace

	if err := e.conversations.Append(ctx, threadID, models.Message{
		Role:    "assistant",
		Content: resp.Message,
		Kind:    string(resp.ResponseType),
	}); err != nil {
		e.logger.Warn("conversation append failed", map[string]interface{}{
			"threadId": threadID,
			"error":    err.Error(),
		})
	}

	metrics.TurnsProcessed.WithLabelValues(string(state.Phase)).Inc()
	if e.recorder != nil {
		e.recorder.RecordTurn(ctx, string(state.Phase))
		e.recorder.RecordTurnDuration(ctx, time.Since(started), string(state.Phase))
	}
	e.logger.Info("turn complete", map[string]interface{}{
		"threadId":   threadID,
		"phase":      string(state.Phase),
		"response":   string(resp.ResponseType),
		"durationMs": time.Since(started).Milliseconds(),
	})

	return resp
}

func (e *Engine) run(ctx context.Context, state *models.ConversationState) *models.TurnResponse {
	transitions := 0
	step := func(name string, fn func()) bool {
		transitions++
		if transitions > e.cfg.MaxTransitions {
			return false
		}
		timer := time.Now()
		fn()
		metrics.StepDuration.WithLabelValues(name).Observe(time.Since(timer).Seconds())
		return true
	}

	if !step(extract.StepName, func() { e.extract.Execute(ctx, state) }) {
		return e.transitionLimit(state)
	}
	if !step("validate", func() { e.validate.Execute(ctx, state) }) {
		return e.transitionLimit(state)
	}

	// Numeric reply against displayed offers routes to selection before any
	// completeness check, so a bare "2" never triggers a re-search.
	if e.looksLikeSelection(ctx, state) {
		return e.runSelection(ctx, state)
	}

	if !state.Control.InfoComplete {
		if state.Control.FollowupCount < e.cfg.MaxFollowups {
			return e.followup(state)
		}
		// Safety valve: the follow-up allowance is spent. Default the
		// non-critical fields and force-advance; a still-unworkable field
		// set fails inside the search pipeline as an apology.
		e.applyDefaults(ctx, state)
	}

	return e.runSearch(ctx, state, step)
}

// looksLikeSelection reports whether the message carries a standalone
// integer while offers are displayed or cached for the thread.
func (e *Engine) looksLikeSelection(ctx context.Context, state *models.ConversationState) bool {
	if _, ok := selection.ParseSelection(state.CurrentMessage); !ok {
		return false
	}
	if len(state.Search.FormattedOffers) > 0 {
		return true
	}
	cached, err := e.offers.Get(ctx, state.ThreadID)
	if err != nil {
		e.logger.Warn("offer cache read failed", map[string]interface{}{
			"threadId": state.ThreadID,
			"error":    err.Error(),
		})
		return false
	}
	return len(cached) > 0
}

func (e *Engine) applyDefaults(ctx context.Context, state *models.ConversationState) {
	state.Visit("apply_defaults")
	metrics.StepFailures.WithLabelValues("followup", string(stderrors.ErrCodeFollowupLimitReached)).Inc()

	if state.Fields.CabinClass == "" {
		state.Fields.CabinClass = e.defaultCabin
	}
	if state.Fields.Duration == 0 {
		state.Fields.Duration = e.defaultDuration
	}
	e.validate.Execute(ctx, state)

	e.logger.Warn("follow-up limit reached, forcing search", map[string]interface{}{
		"threadId":     state.ThreadID,
		"infoComplete": state.Control.InfoComplete,
	})
}

func (e *Engine) runSearch(ctx context.Context, state *models.ConversationState, step func(string, func()) bool) *models.TurnResponse {
	state.Phase = models.PhaseSearching

	var stepErr error
	if !step(buildrequest.StepName, func() { stepErr = e.builder.Execute(ctx, state) }) {
		return e.transitionLimit(state)
	}
	if stepErr != nil {
		return e.stepFailure(state, buildrequest.StepName, stderrors.NewFlightSearchFailedError(stepErr))
	}

	var token string
	if !step("get_auth", func() {
		state.Visit("get_auth")
		token, stepErr = e.tokens.Token(ctx)
	}) {
		return e.transitionLimit(state)
	}
	if stepErr != nil {
		return e.stepFailure(state, "get_auth", stderrors.NewProviderAuthFailedError(stepErr))
	}
	state.Search.AccessToken = token

	var result *search.Result
	if !step(search.StepName, func() { result, stepErr = e.search.Execute(ctx, state) }) {
		return e.transitionLimit(state)
	}
	if stepErr != nil {
		return e.stepFailure(state, search.StepName, stderrors.NewFlightSearchFailedError(stepErr))
	}

	if !step(format.StepName, func() { stepErr = e.format.Execute(ctx, state, result) }) {
		return e.transitionLimit(state)
	}
	if stepErr != nil {
		// Zero offers across the window returns the user to collecting.
		state.Phase = models.PhaseCollecting
		return e.stepFailure(state, format.StepName, stepErr)
	}

	if e.archive != nil {
		e.archive.Record(ctx, state.ThreadID, state.Normalized, state.Search.FormattedOffers)
	}

	if !step(summarize.StepName, func() { e.summarize.Execute(ctx, state) }) {
		return e.transitionLimit(state)
	}

	state.Phase = models.PhaseAwaitingSelection
	return &models.TurnResponse{
		ThreadID:     state.ThreadID,
		ResponseType: models.TurnResults,
		Message:      state.Search.Summary,
		Fields:       &state.Fields,
		Offers:       state.Search.FormattedOffers,
		Summary:      state.Search.Summary,
	}
}

func (e *Engine) runSelection(ctx context.Context, state *models.ConversationState) *models.TurnResponse {
	state.Phase = models.PhaseAwaitingSelection

	if err := e.selection.Execute(ctx, state); err != nil {
		stdErr := e.errs.Normalize(err)
		metrics.StepFailures.WithLabelValues(selection.StepName, string(stdErr.Code)).Inc()
		return &models.TurnResponse{
			ThreadID:     state.ThreadID,
			ResponseType: models.TurnSelection,
			Message:      e.errs.UserText(selection.StepName, err),
		}
	}

	if err := e.hotels.Execute(ctx, state); err != nil {
		stdErr := e.errs.Normalize(err)
		metrics.StepFailures.WithLabelValues(hotels.StepName, string(stdErr.Code)).Inc()
		return &models.TurnResponse{
			ThreadID:     state.ThreadID,
			ResponseType: models.TurnHotels,
			Message:      e.errs.UserText(hotels.StepName, err),
			Hotels:       []models.HotelOffer{},
		}
	}

	return &models.TurnResponse{
		ThreadID:     state.ThreadID,
		ResponseType: models.TurnHotels,
		Message:      hotelSummary(state),
		Hotels:       state.Hotels,
	}
}

func (e *Engine) followup(state *models.ConversationState) *models.TurnResponse {
	state.Phase = models.PhaseCollecting
	question := state.Control.FollowupQuestion
	if question == "" {
		question = "Could you tell me more about your trip?"
	}
	return &models.TurnResponse{
		ThreadID:     state.ThreadID,
		ResponseType: models.TurnQuestion,
		Message:      question,
		Fields:       &state.Fields,
	}
}

func (e *Engine) stepFailure(state *models.ConversationState, step string, err error) *models.TurnResponse {
	stdErr := e.errs.Normalize(err)
	metrics.StepFailures.WithLabelValues(step, string(stdErr.Code)).Inc()

	state.Control.NeedsFollowup = true
	return &models.TurnResponse{
		ThreadID:     state.ThreadID,
		ResponseType: models.TurnQuestion,
		Message:      e.errs.UserText(step, err),
		Fields:       &state.Fields,
	}
}

func (e *Engine) transitionLimit(state *models.ConversationState) *models.TurnResponse {
	err := stderrors.NewTransitionLimitError(e.cfg.MaxTransitions)
	metrics.StepFailures.WithLabelValues("engine", string(stderrors.ErrCodeTransitionLimit)).Inc()
	return &models.TurnResponse{
		ThreadID:     state.ThreadID,
		ResponseType: models.TurnError,
		Message:      e.errs.UserText("engine", err),
	}
}

// countFollowups counts the question turns of the current collecting episode:
// the trailing run of assistant messages tagged as questions. Any other
// assistant response (results, hotels, error) closes the episode, so a new
// trip in the same thread starts with a fresh allowance.
func countFollowups(history []models.Message) int {
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role != "assistant" {
			continue
		}
		if m.Kind != string(models.TurnQuestion) {
			break
		}
		count++
	}
	return count
}

func hotelSummary(state *models.ConversationState) string {
	if len(state.Hotels) == 0 {
		return "Your flight is selected, but I couldn't find hotel offers for your stay."
	}
	return "Your flight is selected. Here are hotel options for your stay:"
}
