package domain

import "sort"

// RankSubmissions returns the correct submissions in winning order:
// response time ascending (missing last), then submission time, then id.
// The input slice is not modified.
func RankSubmissions(submissions []Submission) []Submission {
	ranked := make([]Submission, 0, len(submissions))
	for _, s := range submissions {
		if s.IsCorrect {
			ranked = append(ranked, s)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return rankBefore(ranked[i], ranked[j])
	})
	return ranked
}

// ResolveWinner picks the first submission of RankSubmissions. ok is false
// when no correct submission exists.
func ResolveWinner(submissions []Submission) (winner Submission, ok bool) {
	found := false
	for _, s := range submissions {
		if !s.IsCorrect {
			continue
		}
		if !found || rankBefore(s, winner) {
			winner = s
			found = true
		}
	}
	return winner, found
}

func rankBefore(a, b Submission) bool {
	switch {
	case a.ResponseTimeSeconds == nil && b.ResponseTimeSeconds != nil:
		return false
	case a.ResponseTimeSeconds != nil && b.ResponseTimeSeconds == nil:
		return true
	case a.ResponseTimeSeconds != nil && *a.ResponseTimeSeconds != *b.ResponseTimeSeconds:
		return *a.ResponseTimeSeconds < *b.ResponseTimeSeconds
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}
