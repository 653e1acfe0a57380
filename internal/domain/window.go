package domain

import "time"

// IsOpen reports whether now falls inside the question's global window.
func (q Question) IsOpen(now time.Time) bool {
	return !now.Before(q.StartTime) && !now.After(q.EndTime)
}

// HasStarted reports whether the window start has been reached.
func (q Question) HasStarted(now time.Time) bool {
	return !now.Before(q.StartTime)
}

// HasEnded reports whether now is past the window end.
func (q Question) HasEnded(now time.Time) bool {
	return now.After(q.EndTime)
}

// ForceEnd moves EndTime to now when now is earlier than the current end.
// The new end never precedes StartTime. It reports whether EndTime changed.
func (q *Question) ForceEnd(now time.Time) bool {
	if !now.Before(q.EndTime) {
		return false
	}
	if now.Before(q.StartTime) {
		now = q.StartTime
	}
	q.EndTime = now
	return true
}

// PersonalEnd bounds start+duration by the question's end.
func PersonalEnd(start time.Time, duration time.Duration, questionEnd time.Time) time.Time {
	end := start.Add(duration)
	if end.After(questionEnd) {
		return questionEnd
	}
	return end
}
