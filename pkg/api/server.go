package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tkhs-dev/updown/pkg/app/option"
	"github.com/tkhs-dev/updown/pkg/engine"
)

// Server exposes the node over REST and WebSocket.
type Server struct {
	app    *option.App
	router *mux.Router
	hub    *Hub
}

// NewServer creates the API server around an app instance.
func NewServer(app *option.App) *Server {
	s := &Server{
		app:    app,
		router: mux.NewRouter(),
		hub:    NewHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/records/{address}", s.handleGetRecord).Methods("GET")
	api.HandleFunc("/oracle/price", s.handleGetPrice).Methods("GET")
	api.HandleFunc("/bets", s.handleOpenBet).Methods("POST")
	api.HandleFunc("/settle", s.handleSettle).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the HTTP server. Blocks until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	log.Printf("[api] server starting on %s", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// BroadcastTick fans a price sample out to WebSocket subscribers. Wired as
// the oracle streamer's OnTick callback.
func (s *Server) BroadcastTick(ts uint32, price uint64) {
	s.hub.Broadcast(PriceTick{Type: "tick", Timestamp: ts, Price: price})
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	bettor, ok := parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}

	rec, err := s.app.GetRecord(bettor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if rec == nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	respondJSON(w, recordInfo(s.app.RecordAddress(bettor), rec))
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	price, ok := s.app.CurrentPrice()
	respondJSON(w, PriceInfo{Price: price, Available: ok})
}

func (s *Server) handleOpenBet(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	bettor, ok := parseAddress(w, req.Bettor)
	if !ok {
		return
	}

	var cmd engine.Command
	switch req.Direction {
	case "up":
		cmd = engine.OpenLong
	case "down":
		cmd = engine.OpenShort
	default:
		respondError(w, http.StatusBadRequest, engine.ErrUnknownCommand)
		return
	}

	rec, err := s.app.OpenBet(bettor, cmd)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	log.Printf("[api] bet opened: bettor=%s direction=%s strike=%d", req.Bettor, req.Direction, rec.StrikePrice)
	respondJSON(w, recordInfo(s.app.RecordAddress(bettor), rec))
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	bettor, ok := parseAddress(w, req.Bettor)
	if !ok {
		return
	}

	rec, err := s.app.SettleBet(bettor)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	log.Printf("[api] settled: bettor=%s score=%d", req.Bettor, rec.Score)
	respondJSON(w, recordInfo(s.app.RecordAddress(bettor), rec))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

func recordInfo(account common.Address, rec *engine.Record) RecordInfo {
	direction := "down"
	if rec.IsHigher {
		direction = "up"
	}
	return RecordInfo{
		Account:           account.Hex(),
		Score:             rec.Score,
		Phase:             rec.Phase().String(),
		StrikePrice:       rec.StrikePrice,
		MaturityTimestamp: rec.MaturityTimestamp,
		Direction:         direction,
	}
}

func parseAddress(w http.ResponseWriter, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// statusFor maps engine rejections onto HTTP statuses.
func statusFor(err error) int {
	switch engine.ErrorCode(err) {
	case engine.ErrNoOpenPosition.Code(), engine.ErrPositionAlreadyOpen.Code(), engine.ErrMaturityNotReached.Code():
		return http.StatusConflict
	case engine.ErrPriceUnavailable.Code():
		return http.StatusServiceUnavailable
	case engine.ErrUnknownCommand.Code(), engine.ErrMalformedInstruction.Code():
		return http.StatusBadRequest
	case engine.ErrUnauthorized.Code(), engine.ErrUntrustedOracle.Code():
		return http.StatusForbidden
	case 0:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: engine.ErrorCode(err)})
}
