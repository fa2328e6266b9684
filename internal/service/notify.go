package service

import (
	"context"

	"strive/internal/models"
)

// NotificationEmitter delivers partner notifications. Services call it only
// after their own writes have committed; emission failures are logged by the
// implementation and never fail the originating operation.
type NotificationEmitter interface {
	Emit(ctx context.Context, n *models.Notification)
}

// noopEmitter drops notifications. Used when no emitter is wired, e.g. in
// the sweep binary.
type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *models.Notification) {}

// NoopEmitter returns an emitter that discards every notification.
func NoopEmitter() NotificationEmitter {
	return noopEmitter{}
}
