package stats

import "github.com/julianstephens/dayprompt/internal/models"

type Summary struct {
	Total          int
	Answered       int
	Missed         int
	Pending        int
	CompletionRate float64 // answered / (answered + missed)
	CurrentStreak  int
	LongestStreak  int
	MoodCounts     map[models.Mood]int
	ScoredCount    int
	AverageScore   float64
}

// Summarize aggregates entries as of today.
func Summarize(entries []models.DayEntry, today string) Summary {
	s := Summary{
		Total:         len(entries),
		CurrentStreak: CurrentStreak(entries, today),
		LongestStreak: LongestStreak(entries),
		MoodCounts:    make(map[models.Mood]int),
	}

	scoreSum := 0
	for _, e := range entries {
		switch e.Status {
		case models.EntryStatusAnswered:
			s.Answered++
			if e.Mood != nil {
				s.MoodCounts[*e.Mood]++
			}
			if e.Score != nil {
				s.ScoredCount++
				scoreSum += *e.Score
			}
		case models.EntryStatusMissed:
			s.Missed++
		case models.EntryStatusPending:
			s.Pending++
		}
	}

	if closed := s.Answered + s.Missed; closed > 0 {
		s.CompletionRate = float64(s.Answered) / float64(closed)
	}
	if s.ScoredCount > 0 {
		s.AverageScore = float64(scoreSum) / float64(s.ScoredCount)
	}
	return s
}
