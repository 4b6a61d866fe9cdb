package service

import (
	"github.com/agorahq/agora/internal/database/types"
	"github.com/agorahq/agora/internal/realtime"
)

// Notifier hands notifications and realtime messages to the dispatcher.
// Both methods must return immediately.
type Notifier interface {
	Enqueue(n *types.Notification, groups ...string)
	Push(msg *realtime.Message)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Enqueue(*types.Notification, ...string) {}
func (NopNotifier) Push(*realtime.Message)                 {}
