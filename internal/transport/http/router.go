// Package http is the demonstration binary's HTTP transport: it accepts
// inbound messages over POST /api/v1/messages, hands them to the kernel's
// message cycle, and returns the outbound memories produced. Grounded on
// the teacher's chi/cors router wiring and its handlers package shape.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/internal/config"
	"github.com/agentoven/kernel/pkg/agent"
	"github.com/agentoven/kernel/pkg/kernel"
)

// Handlers holds the dependencies the HTTP surface needs.
type Handlers struct {
	Runtime *kernel.AgentRuntime
	Version string
}

// NewRouter assembles the chi router: global middleware, CORS, and the
// process-message route.
func NewRouter(cfg *config.Config, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Get("/version", h.version(cfg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages", h.processMessage)
	})

	return r
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "agentId": h.Runtime.AgentID().String()})
}

func (h *Handlers) version(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"version": cfg.Version})
	}
}

// inboundMessageRequest is the JSON shape POST /api/v1/messages accepts.
type inboundMessageRequest struct {
	RoomID       agent.ID `json:"roomId"`
	EntityID     agent.ID `json:"entityId"`
	Text         string   `json:"text"`
	Source       string   `json:"source,omitempty"`
	UseMultiStep bool     `json:"useMultiStep,omitempty"`
	TimeoutMS    int64    `json:"timeoutMs,omitempty"`
}

type messageResponse struct {
	Responses []*agent.Memory `json:"responses"`
}

func (h *Handlers) processMessage(w http.ResponseWriter, r *http.Request) {
	var req inboundMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	inbound := &agent.Memory{
		ID:        agent.NewID(),
		EntityID:  req.EntityID,
		AgentID:   h.Runtime.AgentID(),
		RoomID:    req.RoomID,
		Content:   agent.Content{Text: req.Text, Source: req.Source},
		CreatedAt: time.Now().UnixMilli(),
	}
	room := &agent.Room{ID: req.RoomID}

	opts := agent.CycleOptions{
		UseMultiStep:           req.UseMultiStep,
		MaxMultiStepIterations: 5,
		TimeoutMS:              req.TimeoutMS,
	}

	responses, err := kernel.ProcessMessage(r.Context(), h.Runtime, inbound, room, opts, nil)
	if err != nil {
		log.Error().Err(err).Msg("process_message failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Responses: responses})
}
