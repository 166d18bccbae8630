package curriculum

import "github.com/oneday-english/oneday/internal/catalog"

// Day is one calendar day of a curriculum with its computed lock state for a
// particular student. Lock state is derived fresh from the completion ledger
// and the teacher's started days on every read; it is never persisted.
type Day struct {
	Number     int
	Locked     bool
	Activities []Activity
}

// BuildDays expands a curriculum into its days and computes each day's lock
// state for a student whose completed activity ids are given. Day 1 is always
// unlocked; a later day unlocks when the previous day is fully complete or a
// teacher has explicitly started it.
func BuildDays(cur Curriculum, completed map[string]struct{}) []Day {
	days := make([]Day, 0, cur.NumberOfDays)
	previousComplete := true

	for i := 1; i <= cur.NumberOfDays; i++ {
		activities := cur.Activities(i)
		days = append(days, Day{
			Number:     i,
			Locked:     i > 1 && !previousComplete && !cur.DayStarted(i),
			Activities: activities,
		})
		previousComplete = dayComplete(activities, completed)
	}
	return days
}

// dayComplete reports whether every non-empty activity of a day appears in
// the completed set.
func dayComplete(activities []Activity, completed map[string]struct{}) bool {
	for _, act := range activities {
		if act.Type == catalog.TypeEmpty {
			continue
		}
		if _, ok := completed[act.ID]; !ok {
			return false
		}
	}
	return true
}

// UnlockedPrefix returns the length of the consecutive run of unlocked days
// starting at day 1.
func UnlockedPrefix(cur Curriculum, completed map[string]struct{}) int {
	n := 0
	for _, day := range BuildDays(cur, completed) {
		if day.Locked {
			break
		}
		n = day.Number
	}
	return n
}

// CompletedDayCount derives how many days a student has worked through: the
// unlocked prefix minus the day currently in progress.
func CompletedDayCount(cur Curriculum, completed map[string]struct{}) int {
	prefix := UnlockedPrefix(cur, completed)
	if prefix <= 0 {
		return 0
	}
	return prefix - 1
}
