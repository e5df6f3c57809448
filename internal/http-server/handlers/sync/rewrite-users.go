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

// RewriteUsers publishes the database user roster back to the spreadsheet.
func RewriteUsers(log *slog.Logger, handler Core) http.HandlerFunc {
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

		if err := handler.RewriteUsers(r.Context()); err != nil {
			logger.Error("rewriting users sheet", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Rewrite failed: %v", err)))
			return
		}
		logger.Info("users sheet rewritten via api")

		render.JSON(w, r, response.Ok("Users sheet rewritten"))
	}
}
