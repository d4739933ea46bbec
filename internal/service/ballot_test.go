package service

import (
	"context"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type votingSetup struct {
	contest domain.Contest
	edition domain.Edition
	a, b, c domain.Submission
}

func newVotingSetup(t *testing.T, f *fixture) votingSetup {
	t.Helper()
	c := f.seedContest(t, "host", "a", "b", "c")
	e := f.seedEdition(t, c.ID, domain.PhaseVoting)
	return votingSetup{
		contest: c,
		edition: e,
		a:       f.seedSubmission(t, e.ID, "a"),
		b:       f.seedSubmission(t, e.ID, "b"),
		c:       f.seedSubmission(t, e.ID, "c"),
	}
}

func TestSubmitRankingOncePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	r, err := f.ballots.SubmitRanking(ctx, "a", v.edition.ID, []uint{v.b.ID, v.c.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{v.b.ID, v.c.ID}, r.Entries)

	_, err = f.ballots.SubmitRanking(ctx, "a", v.edition.ID, []uint{v.c.ID})
	assert.ErrorIs(t, err, ErrDuplicateRanking)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := f.ballots.GetRanking(ctx, "a", v.edition.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{v.b.ID, v.c.ID}, stored.Entries)
	assert.Len(t, f.store.rankings, 1)
}

func TestSubmitRankingValidatesEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)
	_, err := f.submissions.RejectSubmission(ctx, "host", v.c.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		entries []uint
		want    error
	}{
		{"own submission", []uint{v.b.ID, v.a.ID}, ErrOwnSubmission},
		{"rejected submission", []uint{v.c.ID}, domain.ErrInvalidInput},
		{"unknown submission", []uint{777}, domain.ErrInvalidInput},
		{"duplicate entry", []uint{v.b.ID, v.b.ID}, domain.ErrInvalidInput},
		{"empty ballot", nil, ErrEmptyBallot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ballots.SubmitRanking(ctx, "a", v.edition.ID, tt.entries)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.rankings)
}

func TestSubmitRankingOutsideVoting(t *testing.T) {
	f := newFixture(t)
	c := f.seedContest(t, "host", "a")
	e := f.seedEdition(t, c.ID, domain.PhaseSubmission)
	s := f.seedSubmission(t, e.ID, "a")

	_, err := f.ballots.SubmitRanking(context.Background(), "host", e.ID, []uint{s.ID})
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = f.ballots.SubmitRanking(context.Background(), "stranger", e.ID, []uint{s.ID})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestDraftLocksOnceRankingSubmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	draft, err := f.ballots.SaveDraft(ctx, "a", v.edition.ID, []uint{v.c.ID})
	require.NoError(t, err)
	assert.False(t, draft.Locked)

	draft, err = f.ballots.SaveDraft(ctx, "a", v.edition.ID, []uint{v.b.ID, v.c.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{v.b.ID, v.c.ID}, draft.Entries)

	_, err = f.ballots.SaveDraft(ctx, "a", v.edition.ID, []uint{v.a.ID})
	assert.ErrorIs(t, err, ErrOwnSubmission)

	_, err = f.ballots.SubmitRanking(ctx, "a", v.edition.ID, []uint{v.c.ID, v.b.ID})
	require.NoError(t, err)

	locked, err := f.ballots.GetDraft(ctx, "a", v.edition.ID)
	require.NoError(t, err)
	assert.True(t, locked.Locked)
	assert.Equal(t, []uint{v.c.ID, v.b.ID}, locked.Entries)

	_, err = f.ballots.SaveDraft(ctx, "a", v.edition.ID, []uint{v.b.ID})
	assert.ErrorIs(t, err, ErrDraftLocked)

	_, err = f.ballots.GetDraft(ctx, "b", v.edition.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitTelevote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	tv, err := f.ballots.SubmitTelevote(ctx, v.edition.ID, " Gran ", []uint{v.a.ID, v.b.ID})
	require.NoError(t, err)
	assert.Equal(t, "Gran", tv.GuestName)

	_, err = f.ballots.SubmitTelevote(ctx, v.edition.ID, "Gran", []uint{v.a.ID})
	require.NoError(t, err, "guests may vote repeatedly")

	_, err = f.ballots.SubmitTelevote(ctx, v.edition.ID, "", []uint{v.a.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ballots.SubmitTelevote(ctx, v.edition.ID, "Gran", nil)
	assert.ErrorIs(t, err, ErrEmptyBallot)

	done := f.seedEdition(t, v.contest.ID, domain.PhaseResults)
	_, err = f.ballots.SubmitTelevote(ctx, done.ID, "Gran", []uint{v.a.ID})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSubmitVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := newVotingSetup(t, f)

	votes, err := f.ballots.SubmitVotes(ctx, "a", v.edition.ID, []domain.Vote{
		{SubmissionID: v.b.ID, Points: 12},
		{SubmissionID: v.c.ID, Points: 10},
	})
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "a", votes[0].FromUserID)

	_, err = f.ballots.SubmitVotes(ctx, "a", v.edition.ID, []domain.Vote{{SubmissionID: v.b.ID, Points: 8}})
	assert.ErrorIs(t, err, ErrDuplicateVote)

	tests := []struct {
		name  string
		votes []domain.Vote
		want  error
	}{
		{"not a table value", []domain.Vote{{SubmissionID: v.a.ID, Points: 11}}, domain.ErrInvalidInput},
		{"points repeated", []domain.Vote{{SubmissionID: v.a.ID, Points: 8}, {SubmissionID: v.c.ID, Points: 8}}, domain.ErrInvalidInput},
		{"entry repeated", []domain.Vote{{SubmissionID: v.a.ID, Points: 8}, {SubmissionID: v.a.ID, Points: 7}}, domain.ErrInvalidInput},
		{"own entry", []domain.Vote{{SubmissionID: v.b.ID, Points: 8}}, ErrOwnSubmission},
		{"nothing", nil, ErrEmptyBallot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ballots.SubmitVotes(ctx, "b", v.edition.ID, tt.votes)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.store.votes, 2)
}

func TestBallotsAfterVotingClosesAreRefused(t *testing.T) {
	ctx := context.Background()

	closeVoting := func(t *testing.T, f *fixture, v votingSetup) func() {
		return func() {
			_, err := f.editions.CloseVoting(ctx, "host", v.edition.ID)
			require.NoError(t, err)
		}
	}

	t.Run("ranking", func(t *testing.T) {
		f := newFixture(t)
		v := newVotingSetup(t, f)
		f.store.afterRead["FindRanking"] = closeVoting(t, f, v)

		_, err := f.ballots.SubmitRanking(ctx, "host", v.edition.ID, []uint{v.a.ID, v.b.ID})
		assert.ErrorIs(t, err, ErrWrongPhase)
		assert.Empty(t, f.store.rankings)
		assert.Equal(t, 0, *f.submission(t, v.a.ID).Score)
	})

	t.Run("televote", func(t *testing.T) {
		f := newFixture(t)
		v := newVotingSetup(t, f)
		f.store.afterRead["FindByEdition"] = closeVoting(t, f, v)

		_, err := f.ballots.SubmitTelevote(ctx, v.edition.ID, "Gran", []uint{v.a.ID})
		assert.ErrorIs(t, err, ErrWrongPhase)
		assert.Empty(t, f.store.televotes)
	})

	t.Run("votes", func(t *testing.T) {
		f := newFixture(t)
		v := newVotingSetup(t, f)
		f.store.afterRead["HasVoted"] = closeVoting(t, f, v)

		_, err := f.ballots.SubmitVotes(ctx, "host", v.edition.ID, []domain.Vote{{SubmissionID: v.a.ID, Points: 12}})
		assert.ErrorIs(t, err, ErrWrongPhase)
		assert.Empty(t, f.store.votes)
	})
}
