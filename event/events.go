package event

import (
	"workmill/common"
	"workmill/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	EmitFunc = Emit
)

// Emit persists the event and invokes registered handlers. Emission is
// fire-and-forget: a failure is logged and never converts a committed
// transition into an error.
func Emit(ev *LifecycleEvent) *EventRecord {
	record := &EventRecord{
		LifecycleEvent: *ev,
		ID:             idgen.NextID(eventIdWorker),
		Timestamp:      types.CurrentTimestamp(),
	}

	if err := EventPersistCreateFunc(record); err != nil {
		common.Log.Error("failed to persist lifecycle event ", record.ID, " ", err)
	}

	if InvokeHandlersFunc != nil {
		InvokeHandlersFunc(record)
	}
	return record
}
