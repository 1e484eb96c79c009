package application

import (
	"context"

	"espresso-log/internal/domain"
)

// ChangeNotifier is called after every successful mutating tool.
// Delivery is best-effort: a notifier failure never fails the tool outcome.
type ChangeNotifier interface {
	Notify(ctx context.Context, change domain.ChangeType, entity string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ domain.ChangeType, _ string) error {
	return nil
}
