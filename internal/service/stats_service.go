package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/alexnjoya/mindlink/internal/models"
	"github.com/alexnjoya/mindlink/internal/repository"
	"github.com/alexnjoya/mindlink/internal/scoring"
)

const (
	recentSessionCount = 3
	calendarDays       = 7
	unknownLabel       = "Unknown"
)

// StatsService builds a player's dashboard from their session history
type StatsService struct {
	repo SessionRepository
	loc  *time.Location
	now  func() time.Time
}

// NewStatsService creates a new stats service. Calendar days are counted in loc.
func NewStatsService(repo SessionRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{repo: repo, loc: loc, now: time.Now}
}

// History lists a player's sessions oldest first, optionally for one game
func (s *StatsService) History(ctx context.Context, userID, gameKey string, limit int) ([]models.GameSession, error) {
	return s.repo.List(ctx, models.SessionFilter{UserID: userID, GameKey: gameKey, Limit: limit})
}

// Record returns one of a player's session records
func (s *StatsService) Record(ctx context.Context, userID, id string) (*models.GameSession, error) {
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrForbidden
	}
	return record, nil
}

// Dashboard summarizes the player's completed sessions
func (s *StatsService) Dashboard(ctx context.Context, userID string) (*models.DashboardStats, error) {
	sessions, err := s.repo.List(ctx, models.SessionFilter{UserID: userID, CompleteOnly: true})
	if err != nil {
		return nil, err
	}
	return ComputeDashboard(sessions, s.now().In(s.loc)), nil
}

// ComputeDashboard derives every dashboard figure from sessions, which must
// be ordered oldest first. Calendar days are taken in now's location.
func ComputeDashboard(sessions []models.GameSession, now time.Time) *models.DashboardStats {
	avgMMSE := AverageMMSE(sessions)
	return &models.DashboardStats{
		TotalSessions:     len(sessions),
		AverageScore:      AverageScore(sessions),
		BestScore:         BestScore(sessions),
		AverageMMSE:       avgMMSE,
		BestMMSE:          BestMMSE(sessions),
		Classification:    scoring.Classify(float64(avgMMSE)),
		SessionsToday:     CountSessionsToday(sessions, now),
		BestStreak:        BestStreak(sessions, now.Location()),
		CurrentStreak:     CurrentStreak(sessions, now),
		RecentSessions:    LatestSessions(sessions),
		MMSETrend:         MMSETrend(sessions, now.Location()),
		Calendar:          WeekCalendar(sessions, now),
		AvgMMSEByGameType: AvgMMSEByGameType(sessions),
		SessionsByGame:    SessionsByGame(sessions),
	}
}

// AverageScore is the rounded mean total score
func AverageScore(sessions []models.GameSession) int {
	if len(sessions) == 0 {
		return 0
	}
	total := 0
	for _, s := range sessions {
		total += s.TotalScore
	}
	return int(scoring.RoundHalfUp(float64(total) / float64(len(sessions))))
}

// BestScore is the highest total score
func BestScore(sessions []models.GameSession) int {
	best := 0
	for _, s := range sessions {
		best = max(best, s.TotalScore)
	}
	return best
}

// AverageMMSE is the rounded mean MMSE estimate
func AverageMMSE(sessions []models.GameSession) int {
	if len(sessions) == 0 {
		return 0
	}
	total := 0
	for _, s := range sessions {
		total += s.MMSEScore
	}
	return int(scoring.RoundHalfUp(float64(total) / float64(len(sessions))))
}

// BestMMSE is the highest MMSE estimate
func BestMMSE(sessions []models.GameSession) int {
	best := 0
	for _, s := range sessions {
		best = max(best, s.MMSEScore)
	}
	return best
}

// LatestSessions returns the last three sessions, newest first
func LatestSessions(sessions []models.GameSession) []models.GameSession {
	start := max(len(sessions)-recentSessionCount, 0)
	latest := make([]models.GameSession, 0, len(sessions)-start)
	for i := len(sessions) - 1; i >= start; i-- {
		latest = append(latest, sessions[i])
	}
	return latest
}

// MMSETrend lists MMSE estimates by session date, oldest first
func MMSETrend(sessions []models.GameSession, loc *time.Location) []models.TrendPoint {
	dated := make([]models.GameSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.SessionDate.IsZero() {
			dated = append(dated, s)
		}
	}
	slices.SortStableFunc(dated, func(a, b models.GameSession) int {
		return a.SessionDate.Compare(b.SessionDate)
	})

	trend := make([]models.TrendPoint, len(dated))
	for i, s := range dated {
		trend[i] = models.TrendPoint{
			Date:      s.SessionDate.In(loc).Format(time.DateOnly),
			MMSEScore: s.MMSEScore,
		}
	}
	return trend
}

// CountSessionsToday counts sessions last updated on now's calendar day
func CountSessionsToday(sessions []models.GameSession, now time.Time) int {
	count := 0
	for _, s := range sessions {
		if calendarDaysBetween(now, s.UpdatedAt.In(now.Location())) == 0 {
			count++
		}
	}
	return count
}

// BestStreak is the longest run of consecutive days with a session
func BestStreak(sessions []models.GameSession, loc *time.Location) int {
	days := playedDays(sessions, loc)
	if len(days) == 0 {
		return 0
	}

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if calendarDaysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

// CurrentStreak is the run of consecutive days ending today or yesterday.
// A player whose last session is older has no current streak.
func CurrentStreak(sessions []models.GameSession, now time.Time) int {
	days := playedDays(sessions, now.Location())
	if len(days) == 0 {
		return 0
	}

	last := days[len(days)-1]
	if gap := calendarDaysBetween(now, last); gap > 1 {
		return 0
	}

	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if calendarDaysBetween(days[i], days[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// WeekCalendar marks which days of now's week, starting Monday, have a session
func WeekCalendar(sessions []models.GameSession, now time.Time) []models.CalendarDay {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := startOfDay(now).AddDate(0, 0, -offset)

	calendar := make([]models.CalendarDay, calendarDays)
	for i := range calendar {
		day := monday.AddDate(0, 0, i)
		completed := false
		for _, s := range sessions {
			if calendarDaysBetween(day, s.UpdatedAt.In(now.Location())) == 0 {
				completed = true
				break
			}
		}
		calendar[i] = models.CalendarDay{ID: i, Day: day.Format("Mon"), Completed: completed}
	}
	return calendar
}

// AvgMMSEByGameType averages MMSE estimates per game type, one decimal, in
// order of first appearance
func AvgMMSEByGameType(sessions []models.GameSession) []models.GameTypeAverage {
	type total struct {
		sum   int
		count int
	}
	var order []string
	totals := map[string]*total{}

	for _, s := range sessions {
		key := gameTypeOf(s)
		t, ok := totals[key]
		if !ok {
			t = &total{}
			totals[key] = t
			order = append(order, key)
		}
		t.sum += s.MMSEScore
		t.count++
	}

	averages := make([]models.GameTypeAverage, len(order))
	for i, key := range order {
		t := totals[key]
		averages[i] = models.GameTypeAverage{
			GameType: key,
			AvgMMSE:  math.Round(float64(t.sum)/float64(t.count)*10) / 10,
		}
	}
	return averages
}

// SessionsByGame counts sessions per game title
func SessionsByGame(sessions []models.GameSession) map[string]int {
	counts := make(map[string]int)
	for _, s := range sessions {
		title := s.GameTitle
		if title == "" {
			title = unknownLabel
		}
		counts[title]++
	}
	return counts
}

// gameTypeOf reads the game type from the record, falling back to the type
// recorded in its init config
func gameTypeOf(s models.GameSession) string {
	if s.GameType != "" {
		return s.GameType
	}
	var cfg struct {
		Type string `json:"type"`
	}
	if len(s.InitConfig) > 0 && json.Unmarshal(s.InitConfig, &cfg) == nil && cfg.Type != "" {
		return cfg.Type
	}
	return unknownLabel
}

// playedDays returns the distinct calendar days with a session, ascending
func playedDays(sessions []models.GameSession, loc *time.Location) []time.Time {
	var days []time.Time
	for _, s := range sessions {
		days = append(days, startOfDay(s.UpdatedAt.In(loc)))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDaysBetween returns the number of calendar days from b to a,
// ignoring the time of day and DST shifts
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	dayA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(dayA.Sub(dayB).Hours() / 24)
}
