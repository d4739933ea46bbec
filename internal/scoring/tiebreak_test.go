package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/songcontest/songcontest-api/internal/domain"
)

func ids(results []Result) []uint {
	out := make([]uint, len(results))
	for i, r := range results {
		out[i] = r.Submission.ID
	}
	return out
}

func TestOrderByTotal(t *testing.T) {
	got := Results(Input{
		Submissions: subs(1, 2, 3),
		Rankings:    []domain.Ranking{{Entries: []uint{2, 1, 3}}},
	})

	assert.Equal(t, []uint{2, 1, 3}, ids(got))
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestOrderTieOnTotalFallsBackToJury(t *testing.T) {
	// 1 and 2 both have 22 points with one first and one second place each;
	// 2 got its first place from the jury.
	got := Results(Input{
		Submissions: subs(1, 2, 3),
		Rankings:    []domain.Ranking{{Entries: []uint{2, 1, 3}}},
		Televotes:   []domain.Televote{{Entries: []uint{1, 2}}},
	})

	assert.Equal(t, []uint{2, 1, 3}, ids(got))
	assert.Equal(t, 22, got[0].Total)
	assert.Equal(t, 22, got[1].Total)
}

func TestOrderTieBrokenByFirstPlaces(t *testing.T) {
	// 1: 12 + 0 + 0 = 12 with one first place.
	// 2: 6 + 6 = 12 with two fifth places.
	got := Results(Input{
		Submissions: subs(2, 1, 3, 4, 5, 6),
		Televotes: []domain.Televote{
			{Entries: []uint{1}},
			{Entries: []uint{3, 4, 5, 6, 2}},
			{Entries: []uint{4, 3, 6, 5, 2}},
		},
	})

	pos := map[uint]int{}
	for i, r := range got {
		pos[r.Submission.ID] = i
	}
	assert.Less(t, pos[1], pos[2])
}

func TestOrderTieBrokenByLowerPlacements(t *testing.T) {
	a := Result{Submission: domain.Submission{ID: 1}, Total: 20}
	b := Result{Submission: domain.Submission{ID: 2}, Total: 20}
	a.Placements[0], a.Placements[3] = 1, 1
	b.Placements[0], b.Placements[2] = 1, 1

	got := Order([]Result{a, b})
	assert.Equal(t, []uint{2, 1}, ids(got))
}

func TestOrderKeepsInputOrderForFullTies(t *testing.T) {
	got := Results(Input{Submissions: subs(5, 3, 9)})
	assert.Equal(t, []uint{5, 3, 9}, ids(got))
	assert.Equal(t, 0, Compare(got[0], got[1]))
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	in := []Result{
		{Submission: domain.Submission{ID: 1}, Total: 1},
		{Submission: domain.Submission{ID: 2}, Total: 5},
	}
	_ = Order(in)
	assert.Equal(t, uint(1), in[0].Submission.ID)
	assert.Zero(t, in[0].Rank)
}
