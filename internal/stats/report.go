package stats

import (
	"context"

	"github.com/verte-zerg/decodeur/internal/model"
)

// HistorySource is the subset of the store used for reports.
type HistorySource interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListEmotionAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.EmotionAggregate, error)
	ListEmotionStatsForSessions(ctx context.Context, sessionIDs, emotionIDs []string) (map[string]map[string]model.EmotionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions          []model.SessionAggregate
	WindowSessionIDs  []string
	EmotionAggsAll    []model.EmotionAggregate
	EmotionAggsWindow []model.EmotionAggregate
	CurveEmotions     []string
	PerSession        map[string]map[string]model.EmotionAggregate
}

// curveEmotionCount bounds how many per-emotion curves a report carries.
const curveEmotionCount = 3

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src HistorySource, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	aggsAll, err := src.ListEmotionAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	aggsWindow, err := src.ListEmotionAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	curve := TopEmotionsByFrequency(aggsAll, curveEmotionCount)
	perSession, err := src.ListEmotionStatsForSessions(ctx, allIDs, curve)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:          sessions,
		WindowSessionIDs:  windowIDs,
		EmotionAggsAll:    aggsAll,
		EmotionAggsWindow: aggsWindow,
		CurveEmotions:     curve,
		PerSession:        perSession,
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
