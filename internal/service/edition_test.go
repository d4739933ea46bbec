package service

import (
	"context"
	"errors"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestCreateEdition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "guest")
	open := f.now.Add(time.Hour)
	deadline := f.now.Add(48 * time.Hour)

	e, err := f.editions.CreateEdition(ctx, "host", domain.Edition{
		ContestID:          c.ID,
		Name:               "Spring",
		SubmissionsOpen:    &open,
		SubmissionDeadline: &deadline,
		SubmissionClose:    domain.ClosePolicySpecificDate,
		VotingClose:        domain.ClosePolicyManually,
		Phase:              domain.PhaseResults,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseUpcoming, e.Phase)

	_, err = f.editions.CreateEdition(ctx, "guest", domain.Edition{ContestID: c.ID, Name: "Mine"})
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = f.editions.CreateEdition(ctx, "host", domain.Edition{
		ContestID:       c.ID,
		Name:            "No deadline",
		SubmissionClose: domain.ClosePolicySpecificDate,
		VotingClose:     domain.ClosePolicyManually,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpenSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host")
	e := f.seedEdition(t, c.ID, domain.PhaseUpcoming)

	opened, err := f.editions.OpenSubmissions(ctx, "host", e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSubmission, opened.Phase)

	_, err = f.editions.OpenSubmissions(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)

	changes := f.notifier.all()
	require.Len(t, changes, 1)
	assert.Equal(t, domain.PhaseChange{
		EditionID: e.ID,
		ContestID: c.ID,
		From:      domain.PhaseUpcoming,
		To:        domain.PhaseSubmission,
		Reason:    domain.ReasonHostAction,
		At:        f.now,
	}, changes[0])
}

func TestCloseSubmissionsAssignsRunningOrderOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b", "c")
	e := f.seedEdition(t, c.ID, domain.PhaseSubmission)
	sa := f.seedSubmission(t, e.ID, "a")
	sb := f.seedSubmission(t, e.ID, "b")
	sc := f.seedSubmission(t, e.ID, "c")
	_, err := f.submissions.RejectSubmission(ctx, "host", sb.ID)
	require.NoError(t, err)

	ordered, err := f.editions.CloseSubmissions(ctx, "host", e.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, sc.ID, ordered[0].ID)
	assert.Equal(t, sa.ID, ordered[1].ID)
	assert.Equal(t, domain.PhaseVoting, f.edition(t, e.ID).Phase)

	assert.Equal(t, 2, *f.submission(t, sa.ID).RunningOrder)
	assert.Equal(t, 1, *f.submission(t, sc.ID).RunningOrder)
	assert.Nil(t, f.submission(t, sb.ID).RunningOrder)

	before := f.store.writeCount()
	_, err = f.editions.CloseSubmissions(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, before, f.store.writeCount())
	assert.Equal(t, 2, *f.submission(t, sa.ID).RunningOrder)
}

func TestCloseSubmissionsRefusesMoreEntriesThanParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b", "c", "d")
	e := f.seedEdition(t, c.ID, domain.PhaseSubmission)
	for _, user := range []string{"host", "a", "b", "c", "d", "departed"} {
		f.seedSubmission(t, e.ID, user)
	}

	_, err := f.editions.CloseSubmissions(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	assert.Equal(t, domain.PhaseSubmission, f.edition(t, e.ID).Phase)
	for _, s := range f.store.submissions {
		assert.Nil(t, s.RunningOrder)
	}
	assert.Empty(t, f.notifier.all())
}

func TestPlanRunningOrderAcceptsFullHouse(t *testing.T) {
	f := newFixture(t)
	subs := []domain.Submission{{ID: 1}, {ID: 2}, {ID: 3}}

	order, err := f.editions.planRunningOrder(domain.Edition{ID: 9}, subs, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 2, 1}, order)

	_, err = f.editions.planRunningOrder(domain.Edition{ID: 9}, subs, 2)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestHostOnlyPhaseActionsLeaveStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "guest")
	submission := f.seedEdition(t, c.ID, domain.PhaseSubmission)
	voting := f.seedEdition(t, c.ID, domain.PhaseVoting)
	results := f.seedEdition(t, c.ID, domain.PhaseResults)
	s := f.seedSubmission(t, submission.ID, "guest")
	before := f.store.writeCount()

	_, err := f.editions.CloseSubmissions(ctx, "guest", submission.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.editions.CloseVoting(ctx, "guest", voting.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.editions.RevealResults(ctx, "guest", results.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.editions.SetPlaylist(ctx, "guest", voting.ID, "https://example.com/list")
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.editions.FinalizeEdition(ctx, "guest", results.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.submissions.RejectSubmission(ctx, "guest", s.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = f.editions.CloseVoting(ctx, "", voting.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Equal(t, before, f.store.writeCount())
	assert.Equal(t, domain.PhaseSubmission, f.edition(t, submission.ID).Phase)
	assert.Equal(t, domain.PhaseVoting, f.edition(t, voting.ID).Phase)
	assert.False(t, f.edition(t, results.ID).ResultsRevealed)
	assert.Empty(t, f.notifier.all())
}

func TestCloseVotingPersistsScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b", "c")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)
	s1 := f.seedSubmission(t, e.ID, "a")
	s2 := f.seedSubmission(t, e.ID, "b")
	s3 := f.seedSubmission(t, e.ID, "c")
	_, err := f.ballots.SubmitRanking(ctx, "host", e.ID, []uint{s2.ID, s1.ID, s3.ID})
	require.NoError(t, err)

	results, err := f.editions.CloseVoting(ctx, "host", e.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, domain.PhaseResults, f.edition(t, e.ID).Phase)

	for _, want := range []struct {
		id          uint
		score, rank int
	}{{s2.ID, 12, 1}, {s1.ID, 10, 2}, {s3.ID, 8, 3}} {
		s := f.submission(t, want.id)
		require.NotNil(t, s.Score)
		assert.Equal(t, want.score, *s.Score)
		assert.Equal(t, want.rank, *s.Rank)
	}
}

func TestCloseVotingReportsPartialFailureAndSweepResumes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b", "c")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)
	s1 := f.seedSubmission(t, e.ID, "a")
	s2 := f.seedSubmission(t, e.ID, "b")
	s3 := f.seedSubmission(t, e.ID, "c")
	_, err := f.ballots.SubmitRanking(ctx, "host", e.ID, []uint{s1.ID, s2.ID, s3.ID})
	require.NoError(t, err)
	f.store.failScore[s2.ID] = errors.New("deadlock detected")

	_, err = f.editions.CloseVoting(ctx, "host", e.ID)
	var pbe *domain.PartialBatchError
	require.ErrorAs(t, err, &pbe)
	assert.Equal(t, []uint{s2.ID}, pbe.FailedIDs)
	assert.Equal(t, 3, pbe.Total)

	assert.Equal(t, domain.PhaseResults, f.edition(t, e.ID).Phase)
	assert.NotNil(t, f.submission(t, s1.ID).Rank)
	assert.Nil(t, f.submission(t, s2.ID).Rank)

	delete(f.store.failScore, s2.ID)
	require.NoError(t, f.editions.Sweep(ctx, 2))

	resumed := f.submission(t, s2.ID)
	require.NotNil(t, resumed.Rank)
	assert.Equal(t, 2, *resumed.Rank)
	assert.Equal(t, 10, *resumed.Score)

	require.NoError(t, f.editions.Sweep(ctx, 2))
}

func TestFinalizeWaitsForEveryScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)
	s1 := f.seedSubmission(t, e.ID, "a")
	s2 := f.seedSubmission(t, e.ID, "b")
	_, err := f.ballots.SubmitRanking(ctx, "host", e.ID, []uint{s1.ID, s2.ID})
	require.NoError(t, err)
	f.store.failScore[s1.ID] = errors.New("connection reset")

	_, err = f.editions.CloseVoting(ctx, "host", e.ID)
	require.Error(t, err)

	_, err = f.editions.FinalizeEdition(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrScoresPending)
	var pbe *domain.PartialBatchError
	require.ErrorAs(t, err, &pbe)
	assert.Equal(t, []uint{s1.ID}, pbe.FailedIDs)
	assert.Equal(t, domain.PhaseResults, f.edition(t, e.ID).Phase)

	delete(f.store.failScore, s1.ID)
	done, err := f.editions.FinalizeEdition(ctx, "host", e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseComplete, done.Phase)

	scored := f.submission(t, s1.ID)
	require.NotNil(t, scored.Rank)
	assert.Equal(t, 1, *scored.Rank)
	assert.Equal(t, 12, *scored.Score)
}

func TestUpdateEditionRefusesAllEntriesVotingWhileEntriesMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host", "a", "b")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)
	f.seedSubmission(t, e.ID, "a")
	f.seedSubmission(t, e.ID, "b")

	changes := e
	changes.VotingClose = domain.ClosePolicyAllEntries
	_, err := f.editions.UpdateEdition(ctx, "host", changes)
	assert.ErrorIs(t, err, ErrEntriesPending)
	assert.Equal(t, domain.ClosePolicyManually, f.edition(t, e.ID).VotingClose)

	f.seedSubmission(t, e.ID, "host")
	updated, err := f.editions.UpdateEdition(ctx, "host", changes)
	require.NoError(t, err)
	assert.Equal(t, domain.ClosePolicyAllEntries, updated.VotingClose)
	assert.Equal(t, domain.PhaseVoting, updated.Phase)
}

func TestUpdateEditionAfterResultsIsRefused(t *testing.T) {
	f := newFixture(t)
	c := f.seedContest(t, "host")
	e := f.seedEdition(t, c.ID, domain.PhaseResults)

	e.Name = "Renamed"
	_, err := f.editions.UpdateEdition(context.Background(), "host", e)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestFinalizeAndReveal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seedContest(t, "host")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)

	_, err := f.editions.FinalizeEdition(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = f.editions.RevealResults(ctx, "host", e.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = f.editions.CloseVoting(ctx, "host", e.ID)
	require.NoError(t, err)

	revealed, err := f.editions.RevealResults(ctx, "host", e.ID)
	require.NoError(t, err)
	assert.True(t, revealed.ResultsRevealed)

	done, err := f.editions.FinalizeEdition(ctx, "host", e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseComplete, done.Phase)
	assert.True(t, f.edition(t, e.ID).ResultsRevealed)

	playlist, err := f.editions.SetPlaylist(ctx, "host", e.ID, "https://example.com/list")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/list", playlist.PlaylistURL)
}
