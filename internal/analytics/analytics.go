// Package analytics summarizes recorded run history: score trends,
// verdict distribution, and per-stage duration percentiles.
package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
)

// DB is the interface for database access used by analytics.
type DB interface {
	Conn() *sql.DB
}

// Summary aggregates the recorded runs.
type Summary struct {
	Runs       int            `json:"runs"`
	Failed     int            `json:"failed"`
	AvgScore   float64        `json:"avg_score"`
	BestScore  int            `json:"best_score"`
	WorstScore int            `json:"worst_score"`
	Verdicts   map[string]int `json:"verdicts"`
}

// QuerySummary computes run-level aggregates, optionally restricted to a
// single repository ("" for all).
func QuerySummary(database DB, repo string) (*Summary, error) {
	query := `SELECT status, COALESCE(score,0), COALESCE(verdict,'') FROM runs`
	args := []interface{}{}
	if repo != "" {
		query += ` WHERE repo = ?`
		args = append(args, repo)
	}

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	s := &Summary{Verdicts: make(map[string]int), WorstScore: 100}
	scoreTotal, scored := 0, 0
	for rows.Next() {
		var status, verdict string
		var score int
		if err := rows.Scan(&status, &score, &verdict); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Runs++
		if status != "ok" {
			s.Failed++
			continue
		}
		scored++
		scoreTotal += score
		if score > s.BestScore {
			s.BestScore = score
		}
		if score < s.WorstScore {
			s.WorstScore = score
		}
		if verdict != "" {
			s.Verdicts[verdict]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if scored > 0 {
		s.AvgScore = math.Round(float64(scoreTotal)/float64(scored)*10) / 10
	} else {
		s.WorstScore = 0
	}
	return s, nil
}

// StageDuration holds duration stats for one stage across runs.
type StageDuration struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// QueryStageDurations returns per-stage duration stats over all recorded
// stage events, sorted by average duration descending.
func QueryStageDurations(database DB) ([]StageDuration, error) {
	rows, err := database.Conn().Query(`SELECT stage, duration_ms FROM stage_events`)
	if err != nil {
		return nil, fmt.Errorf("query stage events: %w", err)
	}
	defer rows.Close()

	samples := make(map[string][]float64)
	for rows.Next() {
		var stage string
		var ms int
		if err := rows.Scan(&stage, &ms); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		samples[stage] = append(samples[stage], float64(ms))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []StageDuration
	for stage, values := range samples {
		sort.Float64s(values)
		total := 0.0
		for _, v := range values {
			total += v
		}
		out = append(out, StageDuration{
			Stage: stage,
			Count: len(values),
			AvgMs: total / float64(len(values)),
			P50Ms: percentile(values, 0.50),
			P95Ms: percentile(values, 0.95),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AvgMs > out[j].AvgMs })
	return out, nil
}

// percentile interpolates p over sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
