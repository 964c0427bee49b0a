package engine

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces globally-unique string identifiers for table IDs
// and generated-UUID column defaults.
type IDGenerator interface {
	NewID() string
}

// Clock supplies the current time, so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// NewUUIDGenerator returns the default generator, backed by random UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
