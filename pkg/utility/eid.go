package utility

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

type ExecutionID = uuid.UUID
type RunID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
	executionIDMu   sync.RWMutex

	runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("barsim/run"))
)

// GetExecutionID identifies the process, it is attached to logs only and never to reports
func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})

	executionIDMu.RLock()
	defer executionIDMu.RUnlock()
	return executionID
}

func ResetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {})

	executionIDMu.Lock()
	defer executionIDMu.Unlock()

	executionID = uuid.Must(uuid.NewV7())
	return executionID
}

// NewRunID derives a stable identifier from the run name and its seed
func NewRunID(name string, seed int64) RunID {
	return uuid.NewSHA1(runNamespace, []byte(name+"/"+strconv.FormatInt(seed, 10)))
}
