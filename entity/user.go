package entity

import (
	"fmt"
)

const (
	GuestRole   = "guest"
	UserRole    = "user"
	ManagerRole = "manager"
	AdminRole   = "admin"
)

// Root states a user can be parked in outside the report flow.
const (
	StateGuest    = "guest"
	StateMainMenu = "main_menu"
)

// User is the persisted conversation record for one Telegram identity.
type User struct {
	TelegramId    int64       `json:"telegram_id" bson:"telegram_id"`
	Name          string      `json:"name" bson:"name"`
	Role          string      `json:"role" bson:"role" validate:"omitempty,oneof=guest user manager admin"`
	State         string      `json:"state" bson:"state"`
	LastMessageId int64       `json:"last_message_id" bson:"last_message_id"`
	Workday       bool        `json:"is_workday" bson:"is_workday"`
	Draft         ReportDraft `json:"daily_report_draft" bson:"daily_report_draft"`
}

// NewUser creates a user on first contact: guest role, guest state.
func NewUser(telegramId int64, firstName, lastName string) *User {
	name := firstName
	if lastName != "" {
		name = fmt.Sprintf("%s %c.", firstName, []rune(lastName)[0])
	}
	return &User{
		TelegramId: telegramId,
		Name:       name,
		Role:       GuestRole,
		State:      StateGuest,
	}
}

// Label is the author label written into reports and logs.
func (u *User) Label() string {
	return fmt.Sprintf("%s(%d)", u.Name, u.TelegramId)
}

func (u *User) IsGuest() bool {
	return u.Role == GuestRole
}

func (u *User) IsAdmin() bool {
	return u.Role == AdminRole
}
