package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"SignalSage/internal/collector"
	"SignalSage/internal/model"
	"SignalSage/internal/recorder"
	"SignalSage/internal/sage"
)

const (
	healthTimeout = 5 * time.Second
	maxMessageLen = 2000
	maxSearchTopK = 10
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	marketStatus, storeStatus, status := "healthy", "healthy", "healthy"
	if _, err := s.deps.Market.Quote(ctx, s.deps.ProbeSymbol); err != nil {
		marketStatus, status = "unhealthy", "degraded"
		s.log.Warn("market health check failed", zap.Error(err))
	}
	if err := s.deps.Recorder.Ping(ctx); err != nil {
		storeStatus, status = "unhealthy", "degraded"
		s.log.Warn("recorder health check failed", zap.Error(err))
	}

	body := map[string]any{
		"status": status,
		"checks": map[string]string{"market": marketStatus, "recorder": storeStatus},
	}
	if status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Data: body, Error: "service degraded"})
		return
	}
	writeData(w, body)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeValidation(w, []string{"symbol is required"})
		return
	}
	q, err := s.deps.Market.Quote(r.Context(), symbol)
	if err != nil {
		s.writeMarketError(w, "quote", symbol, err)
		return
	}
	writeData(w, q)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var errs []string
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		errs = append(errs, "symbol is required")
	}
	days, err := optionalInt(r, "days", collector.DefaultHistoryDays)
	if err != nil || days < 1 || days > collector.MaxHistoryDays {
		errs = append(errs, "days must be an integer between 1 and 90")
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	h, err := s.deps.Market.History(r.Context(), symbol, days)
	if err != nil {
		s.writeMarketError(w, "history", symbol, err)
		return
	}
	writeData(w, h)
}

type signalRequest struct {
	Pair  string `json:"pair"`
	Depth int    `json:"depth"`
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, []string{"body must be a JSON object"})
		return
	}
	var errs []string
	if strings.TrimSpace(req.Pair) == "" {
		errs = append(errs, "pair is required")
	}
	if req.Depth < 0 || req.Depth > sage.MaxDepth {
		errs = append(errs, fmt.Sprintf("depth must be between 0 and %d", sage.MaxDepth))
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	sig, err := s.deps.Sage.Signal(r.Context(), req.Pair, req.Depth)
	if err != nil {
		s.writeMarketError(w, "signal", req.Pair, err)
		return
	}
	writeData(w, sig)
}

func (s *Server) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalInt(r, "limit", 0)
	if err != nil || limit < 0 {
		writeValidation(w, []string{"limit must be a non-negative integer"})
		return
	}
	pair := r.URL.Query().Get("pair")
	if pair != "" {
		pair = collector.NormalizeSymbol(pair)
	}
	records, err := s.deps.Recorder.RecentSignals(r.Context(), pair, limit)
	if err != nil {
		s.log.Error("load signal history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if records == nil {
		records = []recorder.SignalRecord{}
	}
	writeData(w, records)
}

type chatRequest struct {
	Message string             `json:"message"`
	Profile *model.UserProfile `json:"profile"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, []string{"body must be a JSON object"})
		return
	}
	var errs []string
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		errs = append(errs, "message is required")
	}
	if utf8.RuneCountInString(msg) > maxMessageLen {
		errs = append(errs, "message must be at most 2000 characters")
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	profile := model.DefaultProfile()
	if req.Profile != nil {
		if req.Profile.PreferredLanguage != "" {
			profile.PreferredLanguage = req.Profile.PreferredLanguage
		}
		if req.Profile.ExperienceLevel != "" {
			profile.ExperienceLevel = req.Profile.ExperienceLevel
		}
	}
	writeData(w, s.deps.Sage.Chat(r.Context(), msg, profile))
}

func (s *Server) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	var errs []string
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		errs = append(errs, "q is required")
	}
	k, err := optionalInt(r, "k", 0)
	if err != nil || k < 0 || k > maxSearchTopK {
		errs = append(errs, "k must be an integer between 0 and 10")
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}
	matches := s.deps.Sage.Search(r.Context(), q, k)
	if matches == nil {
		matches = []model.KnowledgeMatch{}
	}
	writeData(w, matches)
}

// writeMarketError maps unrecognized symbols to 404 and everything else to 500.
func (s *Server) writeMarketError(w http.ResponseWriter, op, symbol string, err error) {
	if errors.Is(err, collector.ErrSymbolNotRecognized) {
		writeError(w, http.StatusNotFound, "symbol not recognized: "+symbol)
		return
	}
	s.log.Error("market request failed", zap.String("op", op), zap.String("symbol", symbol), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func optionalInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
