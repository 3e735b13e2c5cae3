package watcher

import (
	"time"

	"github.com/docsmith/docsmith/internal/doc"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// TemplateEvent is one observed change to a template file.
type TemplateEvent struct {
	Path      string
	Kind      doc.Kind
	Type      EventType
	Timestamp time.Time
}
