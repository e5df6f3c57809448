package key

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ShiftBot/internal/lib/api/response"
	"ShiftBot/internal/lib/sl"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

type GenerateRequest struct {
	Username string `json:"username"`
}

type GenerateResponse struct {
	response.Response
	Key string `json:"key,omitempty"`
}

// Generate issues a fresh API key for the username, replacing any previous one.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("key generation not available")
			render.JSON(w, r, response.Error("Key generation not available"))
			return
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.Username == "" {
			render.JSON(w, r, response.Error("Username is required"))
			return
		}

		apiKey, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generating key", sl.Err(err))
			render.JSON(w, r, response.Error("Key generation failed"))
			return
		}
		logger.Info("api key generated", slog.String("username", req.Username))

		render.JSON(w, r, GenerateResponse{
			Response: response.Ok("Key generated"),
			Key:      apiKey,
		})
	}
}
