package driven

import "context"

// Provider is the lifecycle every model adapter shares. Ping must be cheap:
// it runs at start-up and whenever settings change.
type Provider interface {
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
