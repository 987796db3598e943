// Package server exposes the mission orchestrator over HTTP and websocket.
// The handler is h2c-wrapped so gRPC-style HTTP/2 clients work without TLS.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"missionforge/internal/billing"
	"missionforge/internal/mission"
	"missionforge/internal/pipeline"
)

// Creditor is the optional wallet top-up capability. Both ledger
// implementations provide it.
type Creditor interface {
	Credit(ctx context.Context, userID string, amount int64) error
}

// Server routes mission and wallet traffic to the coordinator and ledger.
type Server struct {
	coordinator *mission.Coordinator
	ledger      billing.Ledger
	creditor    Creditor
	hub         *Hub

	// outcomes keeps recent mission records for GET lookups. Bounded so a
	// long-lived process cannot grow without limit.
	outcomes *lru.Cache[string, *mission.Outcome]
}

func New(coordinator *mission.Coordinator, ledger billing.Ledger, creditor Creditor) *Server {
	outcomes, _ := lru.New[string, *mission.Outcome](1024)
	return &Server{
		coordinator: coordinator,
		ledger:      ledger,
		creditor:    creditor,
		hub:         NewHub(),
		outcomes:    outcomes,
	}
}

// BroadcastTransition is wired as the pipeline's transition callback.
func (s *Server) BroadcastTransition(st *pipeline.State) {
	s.hub.Broadcast(Event{
		MissionID: st.ID,
		Status:    st.Status,
		Error:     st.Error,
		Timestamp: time.Now().UTC(),
	})
}

// Handler builds the full route table, h2c-wrapped.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/missions", s.handleMissions)
	mux.HandleFunc("/api/missions/", s.handleMissionByID)
	mux.HandleFunc("/api/wallets/", s.handleWallets)
	mux.HandleFunc("/api/ws", s.hub.ServeWS)
	return h2c.NewHandler(cors(mux), &http2.Server{})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		UserID      string `json:"user_id"`
		MissionText string `json:"mission_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	in.UserID = strings.TrimSpace(in.UserID)
	in.MissionText = strings.TrimSpace(in.MissionText)
	if in.UserID == "" || in.MissionText == "" {
		http.Error(w, "user_id and mission_text are required", http.StatusBadRequest)
		return
	}

	out, err := s.coordinator.Run(r.Context(), in.UserID, in.MissionText)
	if err != nil {
		log.Printf("server: mission run failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.outcomes.Add(out.MissionID, out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMissionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/missions/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "mission id is required", http.StatusBadRequest)
		return
	}
	out, ok := s.outcomes.Get(id)
	if !ok {
		http.Error(w, "unknown mission", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleWallets serves GET /api/wallets/{id} and POST /api/wallets/{id}/credit.
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/wallets/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "wallet id is required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.walletStatus(w, r, id)
	case action == "credit" && r.Method == http.MethodPost:
		s.walletCredit(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) walletStatus(w http.ResponseWriter, r *http.Request, id string) {
	bal, err := s.ledger.Balance(r.Context(), id)
	if errors.Is(err, billing.ErrWalletNotInitialized) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entries, err := s.ledger.Entries(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet_id": id,
		"balance":   bal,
		"entries":   entries,
	})
}

func (s *Server) walletCredit(w http.ResponseWriter, r *http.Request, id string) {
	if s.creditor == nil {
		http.Error(w, "crediting is not supported by this ledger", http.StatusNotImplemented)
		return
	}
	var in struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Amount <= 0 {
		http.Error(w, "amount must be a positive integer", http.StatusBadRequest)
		return
	}
	if err := s.creditor.Credit(r.Context(), id, in.Amount); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	bal, err := s.ledger.Balance(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallet_id": id, "balance": bal})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
