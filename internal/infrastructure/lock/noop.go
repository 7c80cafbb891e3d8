package lock

import (
	"context"

	"ArticlePublisher/internal/ports"
)

// Noop is used when the operator guarantees a single writer.
type Noop struct{}

var _ ports.RegistryLock = Noop{}

func (Noop) Acquire(context.Context) error { return nil }

func (Noop) Release(context.Context) error { return nil }
