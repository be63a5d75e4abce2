package services

import "go.uber.org/zap"

// Revalidator receives a signal whenever a mutation changes the data behind a
// listing path. It is a notification, not a data contract: with no page cache
// in front of the API the default implementation only logs the event.
type Revalidator interface {
	Revalidate(path string)
}

// LogRevalidator is the default no-op-plus-log implementation.
type LogRevalidator struct {
	Log *zap.Logger
}

func (r LogRevalidator) Revalidate(path string) {
	if r.Log != nil {
		r.Log.Debug("revalidate", zap.String("path", path))
	}
}
