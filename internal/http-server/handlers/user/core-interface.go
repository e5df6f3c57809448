package user

import (
	"context"

	"ShiftBot/entity"
)

type Core interface {
	ListBotUsers(ctx context.Context) ([]entity.User, error)
	GetBotUser(ctx context.Context, telegramId int64) (*entity.User, error)
	SetUserRole(ctx context.Context, telegramId int64, role string) error
}
