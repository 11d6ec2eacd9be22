// Package audit writes an append-only trail of workflow decisions to
// ClickHouse. Recording is best effort: a failed insert is logged and
// never fails the triggering operation.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/client"
	"realty-service/internal/util"
)

const insertEvent = `
    INSERT INTO workflow_audit (
        event_time, action, entity_type, entity_id, actor_id, outcome, detail
    ) VALUES (?, ?, ?, ?, ?, ?, ?)`

type Recorder struct {
	ch *client.ClickHouseClient
}

// NewRecorder accepts a nil client; recording becomes a no-op.
func NewRecorder(ch *client.ClickHouseClient) *Recorder {
	return &Recorder{ch: ch}
}

func (r *Recorder) Record(ctx context.Context, action, entityType, entityID, actorID, outcome, detail string) {
	if r == nil || r.ch == nil {
		return
	}

	err := r.ch.Exec(ctx, insertEvent,
		time.Now().UTC(), action, entityType, entityID, actorID, outcome, detail)
	if err != nil {
		util.Warn("Failed to record audit event",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
