package websocket

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Источник проверяется на уровне CORS и токена
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewRouter собирает HTTP-обработчик сервера реального времени: /ws, /metrics и /health
func NewRouter(manager *Manager, jwtService *utils.JWTService, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", serveWS(manager, jwtService)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

// bearerToken берет JWT из параметра token или заголовка Authorization
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func serveWS(manager *Manager, jwtService *utils.JWTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := jwtService.ExtractUserID(bearerToken(r))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		if _, err := uuid.Parse(userID); err != nil {
			http.Error(w, "Invalid user ID", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade уже ответил клиенту
			manager.log.WithError(err).Warn("WebSocket upgrade failed")
			return
		}

		NewClient(userID, conn, manager).Start()
	}
}
