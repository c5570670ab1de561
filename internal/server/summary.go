package server

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ambelin/attune/internal/engine"
	"github.com/ambelin/attune/internal/store"
)

// rankedInterest is one interest entry ordered for display.
type rankedInterest struct {
	Topic  string  `json:"topic"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleChildSummary(w http.ResponseWriter, r *http.Request) {
	childID := chi.URLParam(r, "childID")

	child, err := s.db.GetChild(childID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if child == nil {
		http.Error(w, `{"error":"unknown child"}`, http.StatusNotFound)
		return
	}

	profile := engine.NewProfile()
	if payload, err := s.db.LoadVector(childID); err == nil && payload != nil {
		if p, err := engine.ProfileFromJSON(payload); err == nil {
			profile = p
		}
	}

	// Rank interests by weight, strongest first, capped so a long-lived
	// profile does not become a wall of faded topics.
	const maxSummaryInterests = 10
	interests := make([]rankedInterest, 0, len(profile.Interests))
	for topic, ti := range profile.Interests {
		interests = append(interests, rankedInterest{Topic: topic, Weight: ti.Weight})
	}
	sort.Slice(interests, func(i, j int) bool {
		if interests[i].Weight != interests[j].Weight {
			return interests[i].Weight > interests[j].Weight
		}
		return interests[i].Topic < interests[j].Topic
	})
	if len(interests) > maxSummaryInterests {
		interests = interests[:maxSummaryInterests]
	}

	streak := 0
	if n, err := s.db.StreakDays(childID); err == nil {
		streak = n
	}

	var stats []store.TopicStat
	if ts, err := s.db.TopicSuccessRates(childID); err == nil {
		stats = ts
	}

	var recent []store.Session
	if rs, err := s.db.RecentSessions(childID, 5); err == nil {
		recent = rs
	}

	var recs []store.Recommendation
	if rr, err := s.db.RecentRecommendations(childID, 5); err == nil {
		recs = rr
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"child_id":     child.ChildID,
		"name":         child.Name,
		"age":          child.Age,
		"focus_topics": child.FocusTopics,
		"streak_days":  streak,
		"interests":    interests,
		"mastery":      profile.Mastery,
		"topic_stats":  stats,
		"digest":       buildDigest(child, streak, interests, profile, stats, recent, recs),
	})
}

// buildDigest renders the summary as a short plain-text report a parent
// dashboard can show verbatim.
func buildDigest(child *store.Child, streak int, interests []rankedInterest, profile *engine.Profile, stats []store.TopicStat, recent []store.Session, recs []store.Recommendation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Attune — %s\n", child.Name)
	if streak > 0 {
		fmt.Fprintf(&b, "%d-day learning streak\n", streak)
	}

	if len(interests) > 0 {
		b.WriteString("\n### Current Interests\n")
		for _, it := range interests {
			fmt.Fprintf(&b, "- %s (%.2f)\n", it.Topic, it.Weight)
		}
	}

	if len(profile.Mastery) > 0 {
		topics := make([]string, 0, len(profile.Mastery))
		for t := range profile.Mastery {
			topics = append(topics, t)
		}
		sort.Strings(topics)

		b.WriteString("\n### Mastery\n")
		for _, t := range topics {
			rec := profile.Mastery[t]
			fmt.Fprintf(&b, "- %s: level %d/3, %d successes", t, rec.Level, rec.SuccessCount)
			if rec.LastQuizScore > 0 {
				fmt.Fprintf(&b, ", last quiz %d", rec.LastQuizScore)
			}
			b.WriteString("\n")
		}
	}

	if len(stats) > 0 {
		b.WriteString("\n### Completion\n")
		for _, st := range stats {
			fmt.Fprintf(&b, "- %s: %d/%d successful\n", st.Topic, st.Successes, st.Attempts)
		}
	}

	if len(recent) > 0 {
		b.WriteString("\n### Recent Sessions\n")
		for _, sess := range recent {
			ts := time.UnixMilli(sess.StartedAt).Format("2006-01-02 15:04")
			fmt.Fprintf(&b, "- [%s] %s\n", ts, sess.Status)
		}
	}

	if len(recs) > 0 {
		b.WriteString("\n### Recently Served\n")
		for _, rec := range recs {
			line := rec.Topic
			if rec.IsChallenge {
				line += " (challenge)"
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return b.String()
}
