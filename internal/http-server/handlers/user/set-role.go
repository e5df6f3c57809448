package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"ShiftBot/internal/lib/api/response"
	"ShiftBot/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type SetRoleRequest struct {
	TelegramId int64  `json:"telegram_id" validate:"required"`
	Role       string `json:"role" validate:"required,oneof=guest user manager admin"`
}

// SetRole assigns a role to a known user. Promoting a guest is how operators
// let a fresh identity into the bot.
func SetRole(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("role assignment not available")
			render.JSON(w, r, response.Error("Role assignment not available"))
			return
		}

		var req SetRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid set-role request", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		existing, err := handler.GetBotUser(r.Context(), req.TelegramId)
		if err != nil {
			logger.Error("loading user", sl.Err(err))
			render.JSON(w, r, response.Error("Failed to load user"))
			return
		}
		if existing == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error(fmt.Sprintf("User %d not found", req.TelegramId)))
			return
		}

		if err := handler.SetUserRole(r.Context(), req.TelegramId, req.Role); err != nil {
			logger.Error("setting role", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Role update failed: %v", err)))
			return
		}
		logger.Info("role assigned",
			slog.Int64("telegram_id", req.TelegramId),
			slog.String("role", req.Role),
		)

		render.JSON(w, r, response.Ok(fmt.Sprintf("Role set: %s", req.Role)))
	}
}
