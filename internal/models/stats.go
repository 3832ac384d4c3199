package models

// TrendPoint is one session's MMSE estimate on the day it was played
type TrendPoint struct {
	Date      string `json:"date"` // YYYY-MM-DD
	MMSEScore int    `json:"mmseScore"`
}

// CalendarDay marks whether the player finished a session on a weekday
type CalendarDay struct {
	ID        int    `json:"id"`
	Day       string `json:"day"` // Mon, Tue, ...
	Completed bool   `json:"completed"`
}

// GameTypeAverage is the mean MMSE estimate of one game type, one decimal
type GameTypeAverage struct {
	GameType string  `json:"gameType"`
	AvgMMSE  float64 `json:"avgMMSE"`
}

// DashboardStats summarizes a player's session history
type DashboardStats struct {
	TotalSessions     int               `json:"totalSessions"`
	AverageScore      int               `json:"averageScore"`
	BestScore         int               `json:"bestScore"`
	AverageMMSE       int               `json:"avgMMSEScore"`
	BestMMSE          int               `json:"bestMMSEScore"`
	Classification    string            `json:"classification"`
	SessionsToday     int               `json:"sessionsToday"`
	BestStreak        int               `json:"bestStreak"`
	CurrentStreak     int               `json:"currentStreak"`
	RecentSessions    []GameSession     `json:"recentSessions"`
	MMSETrend         []TrendPoint      `json:"trendData"`
	Calendar          []CalendarDay     `json:"calendar"`
	AvgMMSEByGameType []GameTypeAverage `json:"avgMMSEByGameType"`
	SessionsByGame    map[string]int    `json:"sessionsByGame"`
}
