package admin

import (
	"math"
	"sort"

	"votedesk/internal/domain"
)

// ComputeShares fills in each row's percentage of the total and marks the
// winners, most votes first. Ties share the win; an election without
// votes has no winner.
func ComputeShares(r *domain.ElectionResults) {
	total := r.TotalVotes
	if total == 0 {
		for _, row := range r.Results {
			total += row.Votes
		}
		r.TotalVotes = total
	}

	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Votes > r.Results[j].Votes
	})

	top := 0
	if len(r.Results) > 0 {
		top = r.Results[0].Votes
	}
	for i := range r.Results {
		row := &r.Results[i]
		row.Share = 0
		if total > 0 {
			row.Share = math.Round(float64(row.Votes)*1000/float64(total)) / 10
		}
		row.IsWinner = top > 0 && row.Votes == top
	}
}
