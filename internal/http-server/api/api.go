package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"ShiftBot/internal/config"
	"ShiftBot/internal/http-server/handlers/errors"
	"ShiftBot/internal/http-server/handlers/key"
	syncHandler "ShiftBot/internal/http-server/handlers/sync"
	"ShiftBot/internal/http-server/handlers/user"
	"ShiftBot/internal/http-server/middleware/authenticate"
	"ShiftBot/internal/http-server/middleware/timeout"
	"ShiftBot/internal/lib/api/response"
	"ShiftBot/internal/lib/sl"
	"ShiftBot/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	user.Core
	syncHandler.Core
	key.Core
}

// New builds the router and serves it. Blocks until the listener fails.
func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok("alive"))
	})

	// The report feed authenticates by api key in the query string since
	// browsers cannot set headers on websocket upgrades.
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authenticate.New(log, handler))

		v1.Route("/user", func(r chi.Router) {
			r.Get("/", user.List(log, handler))
			r.Post("/role", user.SetRole(log, handler))
		})
		v1.Route("/sync", func(r chi.Router) {
			r.Post("/refresh", syncHandler.Refresh(log, handler))
			r.Post("/users", syncHandler.RewriteUsers(log, handler))
		})
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
