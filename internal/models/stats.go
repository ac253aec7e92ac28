package models

import "time"

// BotStats is the runtime snapshot shown by the /stats command.
type BotStats struct {
	Resources        int
	Users            int
	UpdatesTotal     uint64
	UpdateFailures   uint64
	AverageUpdateMs  float64
	CacheHitRatio    float64
	DBQueryCount     uint64
	AverageDBQueryMs float64
	ActiveSessions   int
	Goroutines       int
	GeneratedAt      time.Time
}
