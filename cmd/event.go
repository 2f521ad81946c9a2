package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leavesync/leavesync/internal/core/events"
	"github.com/leavesync/leavesync/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus diagnostics",
	Long:  `Publish sample lifecycle events through the bus to verify the audit subscriber wiring.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [kind]",
	Short: "Publish a sample submitted event",
	Long:  `Publish a sample request.submitted event for the given kind (leave or reimbursement)`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishSampleEvent(args[0])
	},
}

var eventRequestID string

func publishSampleEvent(kind string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.RegisterAuditSubscriber(eventBus, lg)

	requestID, err := strconv.ParseInt(eventRequestID, 10, 64)
	if err != nil {
		lg.Error("invalid request id", "value", eventRequestID)
		return
	}

	event := events.NewRequestSubmittedEvent(kind, requestID, 0)
	lg.Info("publishing sample event", "kind", kind, "event_id", event.EventID())

	if err := eventBus.Publish(context.Background(), event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	// handlers run async; give them a beat before exiting
	time.Sleep(100 * time.Millisecond)
	lg.Info("sample event published")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventRequestID, "request-id", "1", "Request ID to stamp on the event")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
