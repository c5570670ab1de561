package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ambelin/attune/internal/content"
	"github.com/ambelin/attune/internal/engine"
	"github.com/ambelin/attune/internal/store"
)

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID        string `json:"child_id"`
		PreferredTopic string `json:"preferred_topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.ChildID == "" {
		http.Error(w, `{"error":"child_id required"}`, http.StatusBadRequest)
		return
	}

	child, err := s.db.GetOrCreateChild(req.ChildID, "")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	persist := &vectorPersister{db: s.db}
	profile, err := persist.Load(child.ChildID)
	if err != nil {
		s.log.Warn("behavior profile load failed, starting fresh",
			zap.String("child", child.ChildID), zap.Error(err))
		profile = nil
	}
	profileLoaded := profile != nil
	if profile == nil {
		profile = engine.NewProfile()
	}

	eng := engine.New(s.cfg.Engine,
		engine.WithLogger(s.log),
		engine.WithClock(s.now),
		engine.WithPersister(persist, child.ChildID),
		engine.WithProfile(profile),
		engine.WithFetcher(s.fetcher),
	)
	eng.Start()

	sessionID := uuid.NewString()
	if _, err := s.db.StartSession(sessionID, child.ChildID); err != nil {
		eng.Stop()
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sessions.Add(&ActiveSession{SessionID: sessionID, ChildID: child.ChildID, Engine: eng})

	prof := eng.Profile()
	initialTopic := req.PreferredTopic
	if initialTopic == "" {
		initialTopic = s.catalog.Suggest(prof.TopInterests(3), prof.Seen)
	}

	// Warm the buffer with whatever the session is likely to ask for
	// first. Duplicate candidates collapse inside the engine.
	candidates := append([]string{initialTopic}, child.FocusTopics...)
	candidates = append(candidates, s.catalog.Next(initialTopic)...)
	eng.Prefetch(context.Background(), candidates)

	streak, err := s.db.StreakDays(child.ChildID)
	if err != nil {
		s.log.Warn("streak lookup failed", zap.String("child", child.ChildID), zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":     sessionID,
		"child_id":       child.ChildID,
		"initial_topic":  initialTopic,
		"profile_loaded": profileLoaded,
		"streak_days":    streak,
	})
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string         `json:"session_id"`
		Events    []engine.Event `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, `{"error":"session_id required"}`, http.StatusBadRequest)
		return
	}

	as, ok := s.sessions.Get(req.SessionID)
	if !ok {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}

	accepted, rejected := 0, 0
	for _, ev := range req.Events {
		res := as.Engine.Apply(ev)
		if !res.Accepted {
			rejected++
			continue
		}
		accepted++

		if ev.Kind == engine.EventInteractionEnd {
			err := s.db.LogInteraction(&store.Interaction{
				SessionID:  as.SessionID,
				ChildID:    as.ChildID,
				ItemID:     ev.ItemID,
				Kind:       res.Kind,
				Topic:      ev.Topic,
				Success:    ev.Success,
				DurationMS: res.DurationMS,
			})
			if err != nil {
				s.log.Warn("interaction log failed",
					zap.String("session", as.SessionID), zap.Error(err))
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"accepted":     accepted,
		"rejected":     rejected,
		"metrics":      as.Engine.Metrics(),
		"content_mode": as.Engine.Mode(),
	})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Topic     string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, `{"error":"session_id required"}`, http.StatusBadRequest)
		return
	}

	as, ok := s.sessions.Get(req.SessionID)
	if !ok {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}

	topic := req.Topic
	if topic == "" {
		prof := as.Engine.Profile()
		topic = s.catalog.Suggest(prof.TopInterests(3), prof.Seen)
	}

	rec := as.Engine.Recommend(topic)

	err := s.db.LogRecommendation(&store.Recommendation{
		SessionID:       as.SessionID,
		ChildID:         as.ChildID,
		Topic:           rec.Topic,
		Reason:          rec.Reason,
		DifficultyLevel: rec.DifficultyLevel,
		ContentMode:     string(rec.ContentMode),
		IsChallenge:     rec.IsChallenge,
	})
	if err != nil {
		s.log.Warn("recommendation log failed",
			zap.String("session", as.SessionID), zap.Error(err))
	}

	var resp struct {
		engine.Recommendation
		Item *content.Item `json:"item,omitempty"`
	}
	resp.Recommendation = rec
	if item, ok := as.Engine.Prefetched(rec.Topic); ok {
		resp.Item = &item
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, `{"error":"session_id required"}`, http.StatusBadRequest)
		return
	}

	as, ok := s.sessions.Remove(req.SessionID)
	if !ok {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}
	as.Engine.Stop()

	if err := s.db.EndSession(as.SessionID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	prof := as.Engine.Profile()
	next := s.catalog.Suggest(prof.TopInterests(3), prof.Seen)

	streak, err := s.db.StreakDays(as.ChildID)
	if err != nil {
		s.log.Warn("streak lookup failed", zap.String("child", as.ChildID), zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ended",
		"next_topic":  next,
		"streak_days": streak,
	})
}

func (s *Server) handleSessionMetrics(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	as, ok := s.sessions.Get(sessionID)
	if !ok {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   as.SessionID,
		"child_id":     as.ChildID,
		"metrics":      as.Engine.Metrics(),
		"content_mode": as.Engine.Mode(),
		"dormancy":     as.Engine.Dormancy(),
	})
}
