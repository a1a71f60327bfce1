package http

import (
	"net/http"
	"time"

	httpmw "github.com/Epsilon-byte/ScholarsUnited/internal/transport/http/middleware"
	"github.com/Epsilon-byte/ScholarsUnited/internal/transport/ws"
	"github.com/Epsilon-byte/ScholarsUnited/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, verifier httpmw.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(httputil.MiddlewareRequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", httputil.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// WS endpoint; the connection authenticates over the socket itself
	r.Get("/ws", wsServer.HandleWS)

	// REST surface requires a bearer token
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(verifier))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/rooms/{id}", func(rr chi.Router) {
			rr.Get("/members", h.GetMembers)
			rr.Get("/chat", h.GetChatHistory)
			rr.Post("/messages", h.PostMessage)
			rr.Put("/messages/{messageID}", h.UpdateMessage)
			rr.Delete("/messages/{messageID}", h.DeleteMessage)
		})

		pr.Get("/presence/{userID}", h.GetPresence)

		pr.Route("/notifications", func(rn chi.Router) {
			rn.Get("/", h.ListNotifications)
			rn.Post("/user/{userID}", h.NotifyUser)
			rn.Post("/broadcast", h.BroadcastNotification)
			rn.Post("/{id}/read", h.MarkNotificationRead)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
