package journal

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidLevel = errors.New("invalid log level")

type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return true
	}

	return false
}

// Components that write entries.
const (
	ComponentOrchestrator = "orchestrator"
	ComponentPaperless    = "paperless"
	ComponentValidator    = "validator"
	ComponentBigCapital   = "bigcapital"
)

// Entry is one persisted processing log line. SourceID is nil for entries not tied to a document.
type Entry struct {
	ID        uuid.UUID
	SourceID  *int64
	Level     Level
	Component string
	Message   string
	Details   map[string]any
	CreatedAt time.Time
}

type Filter struct {
	Level    *Level
	SourceID *int64
	Limit    int
	Offset   int
}
