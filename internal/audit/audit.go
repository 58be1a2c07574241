package audit

import (
	"context"

	"github.com/pholguinc/api-streaming/pkg/log"
)

// Audit actions for the coordinator.
const (
	ActionConnect       = "coordinator.connect"
	ActionWatch         = "coordinator.watch"
	ActionStopWatch     = "coordinator.stop_watch"
	ActionStartStream   = "coordinator.start_stream"
	ActionEndStream     = "coordinator.end_stream"
	ActionSendMessage   = "coordinator.send_message"
	ActionDisconnect    = "coordinator.disconnect"
	ActionOrphanCleanup = "coordinator.orphan_cleanup"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
