package event

import (
	"workmill/common"

	"github.com/sirupsen/logrus"
)

// EventHandler reacts to one persisted lifecycle event. A nil result means
// the handler does not care about this event.
type EventHandler func(record *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

// EventHandlers is the registration point for downstream reactions to
// lifecycle events, appended to at startup before any emission. Handlers run
// synchronously in registration order on the emitting goroutine; a failing
// handler never blocks the ones after it.
var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := make([]EventHandleResult, 0, len(EventHandlers))
	for _, handle := range EventHandlers {
		r := handle(record)
		if r == nil {
			continue
		}
		if !r.Success {
			common.Log.WithField("handler", r.HandlerIdentifier).
				Error("lifecycle event handler failed: ", r.Message)
		}
		results = append(results, *r)
	}
	return results
}

// AuditLogHandler writes every lifecycle event to the service log, so an
// operator can trace an item's history without querying the event table.
func AuditLogHandler(record *EventRecord) *EventHandleResult {
	common.Log.WithFields(logrus.Fields{
		"workItemId": record.WorkItemID,
		"caseId":     record.CaseID,
		"taskId":     record.TaskID,
		"actor":      record.Actor,
		"fromState":  record.FromState,
		"toState":    record.ToState,
	}).Info("work item ", record.EventType)
	return &EventHandleResult{Success: true, HandlerIdentifier: "auditLog"}
}
