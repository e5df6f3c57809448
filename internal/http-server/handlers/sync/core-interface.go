package sync

import "context"

type Core interface {
	Refresh(ctx context.Context) error
	RewriteUsers(ctx context.Context) error
}
