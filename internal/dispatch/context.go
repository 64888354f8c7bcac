package dispatch

import "context"

// RunInfo identifies the assistant run a tool call belongs to.
type RunInfo struct {
	ThreadID string
	RunID    string
}

type runInfoKey struct{}

// ContextWithRun returns a context carrying the thread and run IDs used to
// correlate dispatched calls.
func ContextWithRun(ctx context.Context, threadID, runID string) context.Context {
	return context.WithValue(ctx, runInfoKey{}, RunInfo{ThreadID: threadID, RunID: runID})
}

// RunFromContext returns the run stored by ContextWithRun, or the zero value.
func RunFromContext(ctx context.Context) RunInfo {
	info, _ := ctx.Value(runInfoKey{}).(RunInfo)
	return info
}
