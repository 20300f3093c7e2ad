package rest

import (
	"time"

	"github.com/heartmarshall/hustle-xp/internal/domain"
	"github.com/heartmarshall/hustle-xp/internal/service/progress"
)

// Wire shapes. Domain types carry no json tags; everything the API returns
// is converted here.

type leagueResponse struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Badge    string `json:"badge"`
	MinLevel int    `json:"minLevel"`
}

type levelProgressResponse struct {
	Level       int  `json:"level"`
	IntoLevel   int  `json:"intoLevel"`
	LevelSpan   int  `json:"levelSpan"`
	ToNextLevel int  `json:"toNextLevel"`
	MaxedOut    bool `json:"maxedOut"`
}

type gameStateResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"userId"`
	CurrentXP     int                    `json:"currentXP"`
	CurrentLevel  int                    `json:"currentLevel"`
	TodayXP       int                    `json:"todayXP"`
	LastResetDate string                 `json:"lastResetDate"`
	CreatedAt     time.Time              `json:"createdAt"`
	Title         string                 `json:"title,omitempty"`
	League        *leagueResponse        `json:"league,omitempty"`
	Level         *levelProgressResponse `json:"level,omitempty"`
}

type actionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	XPValue   int       `json:"xpValue"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
}

type recordActionResponse struct {
	Action    actionResponse     `json:"action"`
	GameState gameStateResponse  `json:"gameState"`
	Challenge *challengeResponse `json:"challenge"`
}

type todoResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	XPValue     int        `json:"xpValue"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Rewarded    bool       `json:"rewarded"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type updateTodoResponse struct {
	Todo      todoResponse       `json:"todo"`
	GameState *gameStateResponse `json:"gameState,omitempty"`
}

type challengeResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Type          string     `json:"type"`
	Target        int        `json:"target"`
	Current       int        `json:"current"`
	TimeLimit     int        `json:"timeLimit"`
	TimeRemaining int        `json:"timeRemaining"`
	Active        bool       `json:"active"`
	Completed     bool       `json:"completed"`
	StartedAt     *time.Time `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type sessionResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	ChallengeType    *string    `json:"challengeType"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          *time.Time `json:"endTime"`
	Duration         int        `json:"duration"`
	ActionsCompleted int        `json:"actionsCompleted"`
	XPEarned         int        `json:"xpEarned"`
	BonusXP          int        `json:"bonusXP"`
	Completed        bool       `json:"completed"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type endSessionResponse struct {
	Session      sessionResponse       `json:"session"`
	BonusKind    string                `json:"bonusKind"`
	TotalXP      int                   `json:"totalXP"`
	GameState    *gameStateResponse    `json:"gameState,omitempty"`
	Achievements []achievementResponse `json:"achievements"`
}

type achievementResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

type levelResponse struct {
	Level  int            `json:"level"`
	XP     int            `json:"xp"`
	Title  string         `json:"title"`
	League leagueResponse `json:"league"`
}

type overviewResponse struct {
	GameState    gameStateResponse  `json:"gameState"`
	TodayActions []actionResponse   `json:"todayActions"`
	Stats        map[string]int     `json:"stats"`
	Challenge    *challengeResponse `json:"challenge"`
	Session      *sessionResponse   `json:"session"`
}

func toLeagueResponse(l domain.League) leagueResponse {
	return leagueResponse{Key: l.Key, Title: l.Title, Color: l.Color, Badge: l.Badge, MinLevel: l.MinLevel}
}

func toProgressResponse(p domain.UserProgress) gameStateResponse {
	return gameStateResponse{
		ID:            p.ID.String(),
		UserID:        p.UserKey,
		CurrentXP:     p.CumulativeXP,
		CurrentLevel:  p.CurrentLevel,
		TodayXP:       p.TodayXP,
		LastResetDate: p.LastResetDate,
		CreatedAt:     p.CreatedAt,
	}
}

func toGameStateResponse(v *progress.View) gameStateResponse {
	resp := toProgressResponse(v.Progress)
	league := toLeagueResponse(v.League)
	resp.Title = v.Title
	resp.League = &league
	resp.Level = &levelProgressResponse{
		Level:       v.Level.Level,
		IntoLevel:   v.Level.IntoLevel,
		LevelSpan:   v.Level.LevelSpan,
		ToNextLevel: v.Level.ToNextLevel,
		MaxedOut:    v.Level.MaxedOut,
	}
	return resp
}

func toActionResponse(e domain.ActionEvent) actionResponse {
	return actionResponse{
		ID:        e.ID.String(),
		UserID:    e.UserKey,
		Type:      e.Type.String(),
		XPValue:   e.XPValue,
		Timestamp: e.Timestamp,
		Date:      e.Date,
	}
}

func toActionResponses(events []domain.ActionEvent) []actionResponse {
	out := make([]actionResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toActionResponse(e))
	}
	return out
}

func toStatsResponse(stats map[domain.ActionType]int) map[string]int {
	out := make(map[string]int, len(stats))
	for t, n := range stats {
		out[t.String()] = n
	}
	return out
}

func toTodoResponse(t domain.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID.String(),
		UserID:      t.UserKey,
		Title:       t.Title,
		XPValue:     t.XPValue,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Rewarded:    t.RewardedAt != nil,
		CreatedAt:   t.CreatedAt,
	}
}

func toChallengeResponse(g *domain.ChallengeGoal) *challengeResponse {
	if g == nil {
		return nil
	}
	return &challengeResponse{
		ID:            g.ID.String(),
		UserID:        g.UserKey,
		Type:          g.Type.String(),
		Target:        g.Target,
		Current:       g.Current,
		TimeLimit:     g.TimeLimitSeconds,
		TimeRemaining: g.TimeRemainingSeconds,
		Active:        g.Active,
		Completed:     g.Completed,
		StartedAt:     g.StartedAt,
		CompletedAt:   g.CompletedAt,
		CreatedAt:     g.CreatedAt,
	}
}

func toSessionResponse(s *domain.FocusSession) *sessionResponse {
	if s == nil {
		return nil
	}
	resp := &sessionResponse{
		ID:               s.ID.String(),
		UserID:           s.UserKey,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		Duration:         s.DurationSeconds,
		ActionsCompleted: s.ActionsCompleted,
		XPEarned:         s.XPEarned,
		BonusXP:          s.BonusXP,
		Completed:        s.Completed,
		CreatedAt:        s.CreatedAt,
	}
	if s.ChallengeType != nil {
		ct := s.ChallengeType.String()
		resp.ChallengeType = &ct
	}
	return resp
}

func toAchievementResponses(list []domain.Achievement) []achievementResponse {
	out := make([]achievementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, achievementResponse{
			ID:          a.ID.String(),
			UserID:      a.UserKey,
			Type:        string(a.Type),
			Title:       a.Title,
			Description: a.Description,
			UnlockedAt:  a.UnlockedAt,
		})
	}
	return out
}
