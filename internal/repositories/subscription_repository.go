package repositories

import "context"

// SubscriptionRepository defines data access for channel subscriptions.
// Toggle reports the resulting state: true when the subscription now exists.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}
