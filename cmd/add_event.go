package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calassist/internal/calendar"
	"github.com/teemow/calassist/internal/dispatch"
	"github.com/teemow/calassist/internal/logging"
)

type addEventOptions struct {
	runtimeOptions
	summary string
	start   string
	end     string
	color   string
}

func newAddEventCmd() *cobra.Command {
	opts := addEventOptions{}

	cmd := &cobra.Command{
		Use:   "add-event",
		Short: "Add one event to the calendar",
		Long: `Add one event to the configured calendar without involving the assistant.
Times are local to the configured timezone (YYYY-MM-DDTHH:MM:SS). Without
--end the event lasts one hour.`,
		Example: `  calassist add-event --summary "Team Standup" --start 2024-07-10T09:00:00 --color Blue`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddEvent(cmd, opts)
		},
	}

	addRuntimeFlags(cmd, &opts.runtimeOptions)
	cmd.Flags().StringVar(&opts.summary, "summary", "", "Event title")
	cmd.Flags().StringVar(&opts.start, "start", "", "Local start time")
	cmd.Flags().StringVar(&opts.end, "end", "", "Local end time")
	cmd.Flags().StringVar(&opts.color, "color", "", "Color name (e.g. Blue) or ID 1-11")
	_ = cmd.MarkFlagRequired("summary")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

// eventArgs builds the same argument map an assistant sends to schedule_event.
func (o addEventOptions) eventArgs() map[string]any {
	args := map[string]any{
		"summary": o.summary,
		"start":   o.start,
	}
	if o.end != "" {
		args["end"] = o.end
	}
	if o.color != "" {
		args["color"] = o.color
	}
	return args
}

func runAddEvent(cmd *cobra.Command, opts addEventOptions) error {
	ctx := cmd.Context()

	rt, err := setupRuntime(ctx, opts.runtimeOptions)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.logger.Warn("shutdown failed", logging.Err(err))
		}
	}()

	event, err := rt.adder.CreateEvent(opts.eventArgs())
	if err != nil {
		return err
	}

	result := rt.adder.AddEvents(ctx, []*calendar.Event{event})[0]
	if !result.OK() {
		return result.Err
	}

	fmt.Fprintln(cmd.OutOrStdout(), dispatch.ScheduledOutput(event))
	if link := result.Created.HTMLLink; link != "" {
		fmt.Fprintln(cmd.OutOrStdout(), link)
	}
	return nil
}
