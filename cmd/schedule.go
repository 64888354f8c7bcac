package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calassist/internal/assistant"
	"github.com/teemow/calassist/internal/dispatch"
	"github.com/teemow/calassist/internal/logging"
	"github.com/teemow/calassist/internal/server"
)

// defaultRequest is sent when schedule is run without an argument.
const defaultRequest = "Please help me schedule a meeting with the team tomorrow at 10 AM."

type scheduleOptions struct {
	runtimeOptions
	threadID     string
	instructions string
	pollTimeout  time.Duration
}

func newScheduleCmd() *cobra.Command {
	opts := scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule [request]",
		Short: "Ask the assistant to schedule events",
		Long: `Send a scheduling request to the configured assistant and add every event it
asks for to the calendar. The assistant's final reply is printed to stdout.

Without a request the default appointment is used:
  ` + defaultRequest + `

Use --ics-out to write the events to an iCalendar file instead of the calendar.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := defaultRequest
			if len(args) == 1 {
				request = args[0]
			}
			return runSchedule(cmd, request, opts)
		},
	}

	addRuntimeFlags(cmd, &opts.runtimeOptions)
	cmd.Flags().StringVar(&opts.threadID, "thread", "", "Reuse an existing thread instead of creating one (overrides thread_id)")
	cmd.Flags().StringVar(&opts.instructions, "instructions", "", "Additional instructions for this run")
	cmd.Flags().DurationVar(&opts.pollTimeout, "poll-timeout", 0, "Maximum time to wait for the run (overrides poll_timeout)")

	return cmd
}

func addRuntimeFlags(cmd *cobra.Command, opts *runtimeOptions) {
	cmd.Flags().StringVar(&opts.configPath, "config", "secrets.json", "Path to the JSON settings file")
	cmd.Flags().StringVar(&opts.icsOut, "ics-out", "", "Write events to this iCalendar file instead of the calendar")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve metrics and health probes on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

func runSchedule(cmd *cobra.Command, request string, opts scheduleOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := setupRuntime(ctx, opts.runtimeOptions)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.logger.Warn("shutdown failed", logging.Err(err))
		}
	}()

	if err := rt.startMetricsServer(opts.metricsAddr, server.NewHealthChecker(nil)); err != nil {
		return err
	}

	dispatcher := dispatch.New(
		dispatch.WithLogger(rt.logger),
		dispatch.WithMetrics(rt.provider.Metrics()),
		dispatch.WithAuditLogger(rt.audit),
		dispatch.WithCalendarID(rt.cfg.CalendarID),
	)
	dispatch.RegisterScheduleEvent(dispatcher, rt.adder)

	policy := assistant.PollPolicy{
		Interval: time.Duration(rt.cfg.PollInterval),
		MaxWait:  time.Duration(rt.cfg.PollTimeout),
	}
	if opts.pollTimeout > 0 {
		policy.MaxWait = opts.pollTimeout
	}

	orchestrator := assistant.New(
		assistant.NewClient(rt.cfg.OpenAIAPIKey, os.Getenv(envBaseURL)),
		dispatcher,
		assistant.WithLogger(rt.logger),
		assistant.WithMetrics(rt.provider.Metrics()),
		assistant.WithPollPolicy(policy),
	)

	threadID := opts.threadID
	if threadID == "" {
		threadID = rt.cfg.ThreadID
	}
	if threadID == "" {
		if threadID, err = orchestrator.StartThread(ctx, request); err != nil {
			return err
		}
	} else if err := orchestrator.PostMessage(ctx, threadID, request); err != nil {
		return err
	}

	result, err := orchestrator.Run(ctx, assistant.RunRequest{
		ThreadID:     threadID,
		AssistantID:  rt.cfg.AssistantID,
		Instructions: opts.instructions,
	})
	if err != nil {
		return err
	}

	printRunResult(cmd, result)
	return nil
}

func printRunResult(cmd *cobra.Command, result *assistant.RunResult) {
	out := cmd.OutOrStdout()
	for _, outcome := range result.Outcomes {
		marker := "✓"
		if !outcome.OK() {
			marker = "✗"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", marker, outcome.Output)
	}
	fmt.Fprintln(out, result.Reply)
}
