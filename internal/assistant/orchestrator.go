package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sashabaranov/go-openai"

	"github.com/teemow/calassist/internal/dispatch"
	"github.com/teemow/calassist/internal/instrumentation"
	"github.com/teemow/calassist/internal/logging"
	"github.com/teemow/calassist/internal/toolcall"
)

// cancelTimeout bounds the best-effort cancel issued after a poll timeout.
const cancelTimeout = 10 * time.Second

// messageLimit is how many messages of a run are fetched to find the reply.
const messageLimit = 20

var errRunPending = errors.New("run still pending")

// RunRequest describes one run to execute.
type RunRequest struct {
	ThreadID    string
	AssistantID string

	// Instructions are appended to the assistant's own instructions for this run.
	Instructions string

	// Now is the date reported to the assistant. The zero value means time.Now().
	Now time.Time
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	ThreadID string
	RunID    string
	Status   openai.RunStatus

	// Reply is the text of the assistant's last message in the run.
	Reply string

	// Outcomes holds every dispatched tool call in submission order.
	Outcomes []dispatch.Outcome
}

// Orchestrator executes assistant runs and answers their tool calls.
type Orchestrator struct {
	api        RunsAPI
	dispatcher *dispatch.Dispatcher
	policy     PollPolicy
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

// WithPollPolicy sets the poll policy. Zero fields keep their defaults.
func WithPollPolicy(policy PollPolicy) Option {
	return func(o *Orchestrator) {
		o.policy = policy.withDefaults()
	}
}

// New creates an Orchestrator that answers tool calls through dispatcher.
func New(api RunsAPI, dispatcher *dispatch.Dispatcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:        api,
		dispatcher: dispatcher,
		policy:     DefaultPollPolicy(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.WithService(o.logger, instrumentation.ServiceAssistant)
	return o
}

// DateContext is the line that tells the assistant what day it is.
func DateContext(now time.Time) string {
	return "Today's date is " + now.Format("Monday, 2006-01-02") + "."
}

// StartThread creates a thread seeded with one user message and returns its ID.
func (o *Orchestrator) StartThread(ctx context.Context, userMessage string) (string, error) {
	thread, err := observe(ctx, o, instrumentation.OperationCreateThread, func(ctx context.Context) (openai.Thread, error) {
		return o.api.CreateThread(ctx, openai.ThreadRequest{
			Messages: []openai.ThreadMessage{{
				Role:    openai.ThreadMessageRoleUser,
				Content: userMessage,
			}},
		})
	})
	if err != nil {
		return "", err
	}
	o.logger.DebugContext(ctx, "thread created", logging.Thread(thread.ID))
	return thread.ID, nil
}

// PostMessage adds a user message to an existing thread.
func (o *Orchestrator) PostMessage(ctx context.Context, threadID, userMessage string) error {
	_, err := observe(ctx, o, instrumentation.OperationCreateMessage, func(ctx context.Context) (openai.Message, error) {
		return o.api.CreateMessage(ctx, threadID, openai.MessageRequest{
			Role:    string(openai.ThreadMessageRoleUser),
			Content: userMessage,
		})
	})
	if err != nil {
		return err
	}
	o.logger.DebugContext(ctx, "message posted", logging.Thread(threadID))
	return nil
}

// Run creates a run on req.ThreadID and drives it until it completes. Tool
// calls are dispatched and their outputs submitted as one batch per
// requires_action step.
//
// Errors: ErrProvider for failed provider calls, ErrPollTimeout when the run
// does not settle within the poll policy or the context deadline, and a
// *RunFailedError for failed, cancelled, expired or incomplete runs.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	started := o.now()
	now := req.Now
	if now.IsZero() {
		now = started
	}

	ctx, span := instrumentation.StartSpan(ctx, "assistant.run",
		instrumentation.NewSpanAttributeBuilder().WithRun(req.ThreadID, "").Build()...)
	defer span.End()

	result, err := o.run(ctx, req, now)
	duration := time.Since(started)

	switch {
	case err == nil:
		instrumentation.SetSpanSuccess(span)
		o.metrics.RecordRun(ctx, instrumentation.RunResultCompleted, duration)
	case errors.Is(err, ErrPollTimeout):
		instrumentation.SetSpanError(span, err)
		o.metrics.RecordRun(ctx, instrumentation.RunResultTimeout, duration)
	case errors.Is(err, ErrRunFailed):
		instrumentation.SetSpanError(span, err)
		o.metrics.RecordRun(ctx, instrumentation.RunResultFailed, duration)
	default:
		instrumentation.SetSpanError(span, err)
		o.metrics.RecordRun(ctx, instrumentation.RunResultError, duration)
	}
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, req RunRequest, now time.Time) (*RunResult, error) {
	instructions := DateContext(now)
	if extra := strings.TrimSpace(req.Instructions); extra != "" {
		instructions += "\n" + extra
	}

	run, err := observe(ctx, o, instrumentation.OperationCreateRun, func(ctx context.Context) (openai.Run, error) {
		return o.api.CreateRun(ctx, req.ThreadID, openai.RunRequest{
			AssistantID:            req.AssistantID,
			AdditionalInstructions: instructions,
		})
	})
	if err != nil {
		return nil, err
	}

	logger := logging.WithRun(o.logger, req.ThreadID, run.ID)
	logger.InfoContext(ctx, "run created", logging.Status(string(run.Status)))

	ctx = dispatch.ContextWithRun(ctx, req.ThreadID, run.ID)
	result := &RunResult{ThreadID: req.ThreadID, RunID: run.ID}
	deadline := o.now().Add(o.policy.MaxWait)
	submitted := make(map[string]bool)

	for {
		run, err = o.poll(ctx, logger, req.ThreadID, run, deadline, submitted)
		if err != nil {
			return result, err
		}
		result.Status = run.Status

		switch run.Status {
		case openai.RunStatusRequiresAction:
			outcomes, err := o.answer(ctx, logger, run, submitted)
			result.Outcomes = append(result.Outcomes, outcomes...)
			if err != nil {
				return result, err
			}
			run, err = o.submit(ctx, req.ThreadID, run.ID, outcomes)
			if err != nil {
				return result, err
			}
			logger.InfoContext(ctx, "tool outputs submitted", slog.Int("count", len(outcomes)))

		case openai.RunStatusCompleted:
			reply, err := o.latestReply(ctx, req.ThreadID, run.ID)
			if err != nil {
				return result, err
			}
			result.Reply = reply
			logger.InfoContext(ctx, "run completed", logging.Status(string(run.Status)))
			return result, nil

		default:
			failure := newRunFailedError(run)
			logger.ErrorContext(ctx, "run did not complete", logging.Status(string(run.Status)), logging.Err(failure))
			return result, failure
		}
	}
}

// poll waits until run leaves queued or in_progress. A requires_action run
// whose tool calls were all submitted already counts as pending.
func (o *Orchestrator) poll(ctx context.Context, logger *slog.Logger, threadID string, run openai.Run, deadline time.Time, submitted map[string]bool) (openai.Run, error) {
	if !pending(run, submitted) {
		return run, nil
	}

	last := run
	op := func() (openai.Run, error) {
		current, err := observe(ctx, o, instrumentation.OperationRetrieveRun, func(ctx context.Context) (openai.Run, error) {
			return o.api.RetrieveRun(ctx, threadID, run.ID)
		})
		if err != nil {
			return current, backoff.Permanent(err)
		}
		last = current
		o.metrics.RecordRunPoll(ctx, string(current.Status))
		if pending(current, submitted) {
			return current, errRunPending
		}
		return current, nil
	}

	remaining := deadline.Sub(o.now())
	if remaining <= 0 {
		return last, o.timeout(ctx, logger, threadID, last)
	}

	settled, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(o.policy.backOff()),
		backoff.WithMaxElapsedTime(remaining),
		backoff.WithNotify(func(_ error, next time.Duration) {
			logger.DebugContext(ctx, "run pending", logging.Status(string(last.Status)), slog.Duration("next_poll", next))
		}),
	)
	if err == nil {
		return settled, nil
	}

	if errors.Is(err, errRunPending) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return last, o.timeout(ctx, logger, threadID, last)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		o.cancel(ctx, logger, threadID, last.ID)
		return last, ctxErr
	}
	return last, err
}

// timeout cancels the run and returns ErrPollTimeout.
func (o *Orchestrator) timeout(ctx context.Context, logger *slog.Logger, threadID string, run openai.Run) error {
	logger.WarnContext(ctx, "run did not settle in time",
		logging.Status(string(run.Status)),
		slog.Duration("max_wait", o.policy.MaxWait))
	o.cancel(ctx, logger, threadID, run.ID)
	return fmt.Errorf("%w: run %s still %s", ErrPollTimeout, run.ID, run.Status)
}

// cancel asks the provider to cancel a run. Failures are only logged.
func (o *Orchestrator) cancel(ctx context.Context, logger *slog.Logger, threadID, runID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()

	_, err := observe(ctx, o, instrumentation.OperationCancelRun, func(ctx context.Context) (openai.Run, error) {
		return o.api.CancelRun(ctx, threadID, runID)
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to cancel run", logging.Err(err))
	}
}

// answer dispatches the run's tool calls that have not been submitted yet.
// Calls whose arguments do not decode still get an error output so the run
// can continue.
func (o *Orchestrator) answer(ctx context.Context, logger *slog.Logger, run openai.Run, submitted map[string]bool) ([]dispatch.Outcome, error) {
	raw := requiredToolCalls(run)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: run %s requires action without tool calls", ErrProvider, run.ID)
	}

	outcomes := make([]dispatch.Outcome, 0, len(raw))
	for _, tc := range raw {
		if submitted[tc.ID] {
			logger.DebugContext(ctx, "tool call already answered",
				logging.Tool(tc.Function.Name),
				logging.ToolCallID(tc.ID))
			continue
		}
		submitted[tc.ID] = true

		call, err := toolcall.FromOpenAI(tc)
		if err != nil {
			call = toolcall.New(tc.ID, tc.Function.Name, nil)
			output := dispatch.ErrorOutput(tc.Function.Name, err)
			_ = call.SetResult(output)
			logger.WarnContext(ctx, "invalid tool call arguments",
				logging.Tool(tc.Function.Name),
				logging.ToolCallID(tc.ID),
				logging.Err(err))
			outcomes = append(outcomes, dispatch.Outcome{Call: call, Output: output, Err: err})
			continue
		}

		outcomes = append(outcomes, o.dispatcher.Dispatch(ctx, call))
	}
	return outcomes, nil
}

func (o *Orchestrator) submit(ctx context.Context, threadID, runID string, outcomes []dispatch.Outcome) (openai.Run, error) {
	outputs := make([]openai.ToolOutput, 0, len(outcomes))
	for _, outcome := range outcomes {
		outputs = append(outputs, outcome.Call.Output())
	}
	return observe(ctx, o, instrumentation.OperationSubmitToolOutputs, func(ctx context.Context) (openai.Run, error) {
		return o.api.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{ToolOutputs: outputs})
	})
}

// latestReply returns the text of the newest assistant message of the run.
func (o *Orchestrator) latestReply(ctx context.Context, threadID, runID string) (string, error) {
	limit := messageLimit
	order := "desc"
	list, err := observe(ctx, o, instrumentation.OperationListMessages, func(ctx context.Context) (openai.MessagesList, error) {
		return o.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	})
	if err != nil {
		return "", err
	}

	for _, msg := range list.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		return messageText(msg), nil
	}
	return "", nil
}

func messageText(msg openai.Message) string {
	var parts []string
	for _, content := range msg.Content {
		if content.Text != nil && content.Text.Value != "" {
			parts = append(parts, content.Text.Value)
		}
	}
	return strings.Join(parts, "\n")
}

func requiredToolCalls(run openai.Run) []openai.ToolCall {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return run.RequiredAction.SubmitToolOutputs.ToolCalls
}

// pending reports whether the run has not reached a state the loop acts on.
func pending(run openai.Run, submitted map[string]bool) bool {
	switch run.Status {
	case openai.RunStatusQueued, openai.RunStatusInProgress:
		return true
	case openai.RunStatusRequiresAction:
		calls := requiredToolCalls(run)
		if len(calls) == 0 {
			return false
		}
		for _, tc := range calls {
			if !submitted[tc.ID] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// observe wraps one provider call with a span, metrics and error wrapping.
func observe[T any](ctx context.Context, o *Orchestrator, operation string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartProviderSpan(ctx, instrumentation.ServiceAssistant, operation)
	defer span.End()

	start := time.Now()
	res, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		o.metrics.RecordAssistantOperation(ctx, operation, instrumentation.StatusError, duration)
		return res, fmt.Errorf("%w: %s: %w", ErrProvider, operation, err)
	}
	instrumentation.SetSpanSuccess(span)
	o.metrics.RecordAssistantOperation(ctx, operation, instrumentation.StatusSuccess, duration)
	return res, nil
}
