package job

import "time"

// SpreadDelay assigns the nth item of a batch a delay so that dispatch times
// are spread evenly across the window, keeping batched generation calls from
// hitting provider APIs all at once. Pure: the caller anchors the result to
// its own notion of now.
//
// The first item always gets zero delay and the last item lands exactly on
// the full window; intermediate items floor to whole minutes. A window of
// zero (or a batch of one) disables spreading entirely.
func SpreadDelay(index, total, spreadMinutes int) time.Duration {
	if spreadMinutes <= 0 || total <= 1 {
		return 0
	}

	minutes := index * spreadMinutes / (total - 1)
	return time.Duration(minutes) * time.Minute
}
