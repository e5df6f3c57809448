package sync

import (
	"fmt"
	"log/slog"
	"net/http"

	"ShiftBot/internal/lib/api/cont"
	"ShiftBot/internal/lib/api/response"
	"ShiftBot/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Refresh re-pulls screens and buttons from the config spreadsheet on demand.
func Refresh(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sync")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user", cont.Username(r.Context())),
		)

		if handler == nil {
			logger.Error("sync not available")
			render.JSON(w, r, response.Error("Sync not available"))
			return
		}

		if err := handler.Refresh(r.Context()); err != nil {
			logger.Error("refreshing definitions", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Sync failed: %v", err)))
			return
		}
		logger.Info("definitions refreshed via api")

		render.JSON(w, r, response.Ok("Definitions refreshed"))
	}
}
