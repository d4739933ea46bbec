package service

import (
	"context"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/songcontest/songcontest-api/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"testing"
)

func resultIDs(results []scoring.Result) []uint {
	ids := make([]uint, len(results))
	for i, r := range results {
		ids[i] = r.Submission.ID
	}
	return ids
}

func TestEditionResultsBreakTiesOnJury(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	_, err := f.ballots.SubmitRanking(ctx, "host", v.edition.ID, []uint{v.b.ID, v.a.ID, v.c.ID})
	require.NoError(t, err)
	_, err = f.ballots.SubmitTelevote(ctx, v.edition.ID, "Gran", []uint{v.a.ID, v.b.ID})
	require.NoError(t, err)
	_, err = f.editions.CloseVoting(ctx, "host", v.edition.ID)
	require.NoError(t, err)

	_, results, err := f.results.GetEditionResults(ctx, "host", v.edition.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []uint{v.b.ID, v.a.ID, v.c.ID}, resultIDs(results))
	assert.Equal(t, 22, results[0].Total)
	assert.Equal(t, 12, results[0].Jury)
	assert.Equal(t, 22, results[1].Total)
	assert.Equal(t, 10, results[1].Jury)
	assert.Equal(t, 12, results[1].Televote)
	assert.Equal(t, 8, results[2].Total)
	assert.Equal(t, []int{1, 2, 3}, []int{results[0].Rank, results[1].Rank, results[2].Rank})
}

func TestEditionResultsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	_, _, err := f.results.GetEditionResults(ctx, "host", v.edition.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = f.editions.CloseVoting(ctx, "host", v.edition.ID)
	require.NoError(t, err)

	_, _, err = f.results.GetEditionResults(ctx, "a", v.edition.ID)
	assert.ErrorIs(t, err, ErrResultsHidden)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = f.results.GetEditionResults(ctx, "stranger", v.edition.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.editions.RevealResults(ctx, "host", v.edition.ID)
	require.NoError(t, err)
	_, results, err := f.results.GetEditionResults(ctx, "a", v.edition.ID)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestLeaderboardSumsVisibleEditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b")

	first := f.seedEdition(t, c.ID, domain.PhaseVoting)
	a1 := f.seedSubmission(t, first.ID, "a")
	b1 := f.seedSubmission(t, first.ID, "b")
	_, err := f.ballots.SubmitRanking(ctx, "host", first.ID, []uint{a1.ID, b1.ID})
	require.NoError(t, err)
	_, err = f.editions.CloseVoting(ctx, "host", first.ID)
	require.NoError(t, err)
	_, err = f.editions.RevealResults(ctx, "host", first.ID)
	require.NoError(t, err)

	second := f.seedEdition(t, c.ID, domain.PhaseVoting)
	a2 := f.seedSubmission(t, second.ID, "a")
	b2 := f.seedSubmission(t, second.ID, "b")
	_, err = f.ballots.SubmitRanking(ctx, "host", second.ID, []uint{b2.ID, a2.ID})
	require.NoError(t, err)
	_, err = f.ballots.SubmitTelevote(ctx, second.ID, "Gran", []uint{b2.ID})
	require.NoError(t, err)
	_, err = f.editions.CloseVoting(ctx, "host", second.ID)
	require.NoError(t, err)

	open := f.seedEdition(t, c.ID, domain.PhaseVoting)
	f.seedSubmission(t, open.ID, "a")

	asHost, err := f.results.GetLeaderboard(ctx, "host", c.ID)
	require.NoError(t, err)
	require.Len(t, asHost, 2)
	assert.Equal(t, "b", asHost[0].UserID)
	assert.Equal(t, 10+24, asHost[0].Total)
	assert.Equal(t, 1, asHost[0].Position)
	assert.Equal(t, "a", asHost[1].UserID)
	assert.Equal(t, 12+10, asHost[1].Total)

	asGuest, err := f.results.GetLeaderboard(ctx, "a", c.ID)
	require.NoError(t, err)
	require.Len(t, asGuest, 2)
	assert.Equal(t, "a", asGuest[0].UserID)
	assert.Equal(t, 12, asGuest[0].Total)

	_, err = f.results.GetLeaderboard(ctx, "stranger", c.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestStaleScores(t *testing.T) {
	stored := func(score, rank int) domain.Submission {
		return domain.Submission{Score: &score, Rank: &rank}
	}
	fresh, drifted, unscored := stored(12, 1), stored(3, 2), domain.Submission{}
	fresh.ID, drifted.ID, unscored.ID = 1, 2, 3

	results := []scoring.Result{
		{Submission: fresh, Total: 12, Rank: 1},
		{Submission: drifted, Total: 10, Rank: 2},
		{Submission: unscored, Total: 8, Rank: 3},
	}
	assert.Equal(t, []uint{2}, staleScores(results))
	assert.Empty(t, staleScores(results[:1]))
}

func TestEditionResultsReportStoredScoreDrift(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)
	_, err := f.ballots.SubmitRanking(ctx, "host", v.edition.ID, []uint{v.b.ID, v.a.ID})
	require.NoError(t, err)
	_, err = f.editions.CloseVoting(ctx, "host", v.edition.ID)
	require.NoError(t, err)

	_, _, err = f.results.GetEditionResults(ctx, "host", v.edition.ID)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	f.store.mu.Lock()
	s := f.store.submissions[v.a.ID]
	bogus := 99
	s.Score = &bogus
	f.store.submissions[v.a.ID] = s
	f.store.mu.Unlock()

	_, results, err := f.results.GetEditionResults(ctx, "host", v.edition.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{v.b.ID, v.a.ID, v.c.ID}, resultIDs(results))
	assert.Equal(t, 10, results[1].Total)
	assert.Equal(t, 1, logs.FilterMessage("stored scores disagree with the ballots").Len())
}
