package service

import (
	"cmp"
	"context"
	"github.com/songcontest/songcontest-api/internal/domain"
	"github.com/stretchr/testify/require"
	"slices"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory datastore honoring the same uniqueness rules
// and conditional writes as the Postgres one.
type memStore struct {
	mu sync.Mutex

	nextID      uint
	contests    map[uint]domain.Contest
	editions    map[uint]domain.Edition
	submissions map[uint]domain.Submission
	rankings    []domain.Ranking
	drafts      []domain.SavedRanking
	televotes   []domain.Televote
	votes       []domain.Vote
	profiles    map[string]domain.Profile

	failScore map[uint]error
	afterRead map[string]func()
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		contests:    make(map[uint]domain.Contest),
		editions:    make(map[uint]domain.Edition),
		submissions: make(map[uint]domain.Submission),
		profiles:    make(map[string]domain.Profile),
		failScore:   make(map[uint]error),
		afterRead:   make(map[string]func()),
	}
}

// read runs the hook registered for the named read once, outside the lock,
// standing in for a concurrent request landing right after that read.
func (m *memStore) read(name string) {
	m.mu.Lock()
	hook := m.afterRead[name]
	delete(m.afterRead, name)
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// inPhase mirrors the datastore's phase guard. Callers hold the lock.
func (m *memStore) inPhase(editionID uint, phase domain.Phase) error {
	e, ok := m.editions[editionID]
	if !ok {
		return ErrEditionNotFound
	}
	if e.Phase != phase {
		return ErrPhaseChanged
	}
	return nil
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func cloneContest(c domain.Contest) domain.Contest {
	c.Participants = slices.Clone(c.Participants)
	return c
}

type memContests struct{ *memStore }

func (m memContests) Create(_ context.Context, c domain.Contest) (domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	c.ID = m.id()
	c.Participants = []string{c.HostID}
	m.contests[c.ID] = c
	return cloneContest(c), nil
}

func (m memContests) FindByID(_ context.Context, id uint) (domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contests[id]
	if !ok {
		return domain.Contest{}, ErrContestNotFound
	}
	return cloneContest(c), nil
}

func (m memContests) FindByParticipant(_ context.Context, userID string) ([]domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contest
	for _, c := range m.contests {
		if c.HasParticipant(userID) {
			out = append(out, cloneContest(c))
		}
	}
	slices.SortFunc(out, func(a, b domain.Contest) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m memContests) Update(_ context.Context, c domain.Contest) (domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.contests[c.ID]
	if !ok {
		return domain.Contest{}, ErrContestNotFound
	}
	m.writes++
	stored.Name, stored.Description, stored.JoinCode = c.Name, c.Description, c.JoinCode
	m.contests[c.ID] = stored
	return cloneContest(stored), nil
}

func (m memContests) AddParticipant(_ context.Context, contestID uint, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contests[contestID]
	if !ok {
		return ErrContestNotFound
	}
	if c.HasParticipant(userID) {
		return ErrAlreadyParticipant
	}
	m.writes++
	c.Participants = append(slices.Clone(c.Participants), userID)
	m.contests[contestID] = c
	return nil
}

func (m memContests) RemoveParticipant(_ context.Context, contestID uint, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.contests[contestID]
	m.writes++
	c.Participants = slices.DeleteFunc(slices.Clone(c.Participants), func(p string) bool { return p == userID })
	m.contests[contestID] = c
	return nil
}

func (m memContests) CountParticipants(_ context.Context, contestID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contests[contestID].Participants), nil
}

func (m memContests) Delete(_ context.Context, contestID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contests[contestID]; !ok {
		return ErrContestNotFound
	}
	m.writes++
	for id, e := range m.editions {
		if e.ContestID != contestID {
			continue
		}
		for sid, s := range m.submissions {
			if s.EditionID == id {
				delete(m.submissions, sid)
			}
		}
		m.rankings = slices.DeleteFunc(m.rankings, func(r domain.Ranking) bool { return r.EditionID == id })
		m.drafts = slices.DeleteFunc(m.drafts, func(r domain.SavedRanking) bool { return r.EditionID == id })
		m.televotes = slices.DeleteFunc(m.televotes, func(t domain.Televote) bool { return t.EditionID == id })
		m.votes = slices.DeleteFunc(m.votes, func(v domain.Vote) bool { return v.EditionID == id })
		delete(m.editions, id)
	}
	delete(m.contests, contestID)
	return nil
}

type memEditions struct{ *memStore }

func (m memEditions) Create(_ context.Context, e domain.Edition) (domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	e.ID = m.id()
	m.editions[e.ID] = e
	return e, nil
}

func (m memEditions) FindByID(_ context.Context, id uint) (domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editions[id]
	if !ok {
		return domain.Edition{}, ErrEditionNotFound
	}
	return e, nil
}

func (m memEditions) filter(keep func(domain.Edition) bool) []domain.Edition {
	var out []domain.Edition
	for _, e := range m.editions {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Edition) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (m memEditions) FindByContest(_ context.Context, contestID uint) ([]domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(e domain.Edition) bool { return e.ContestID == contestID }), nil
}

func (m memEditions) FindInPhases(_ context.Context, phases ...domain.Phase) ([]domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(e domain.Edition) bool { return slices.Contains(phases, e.Phase) }), nil
}

func (m memEditions) FindUnscored(_ context.Context, phase domain.Phase) ([]domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(e domain.Edition) bool {
		if e.Phase != phase {
			return false
		}
		for _, s := range m.submissions {
			if s.EditionID == e.ID && s.Eligible() && s.Rank == nil {
				return true
			}
		}
		return false
	}), nil
}

func (m memEditions) UpdateDetails(_ context.Context, e domain.Edition) (domain.Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.editions[e.ID]
	if !ok {
		return domain.Edition{}, ErrEditionNotFound
	}
	m.writes++
	stored.Name, stored.Description = e.Name, e.Description
	stored.SubmissionsOpen, stored.SubmissionDeadline, stored.VotingDeadline = e.SubmissionsOpen, e.SubmissionDeadline, e.VotingDeadline
	stored.SubmissionClose, stored.VotingClose = e.SubmissionClose, e.VotingClose
	m.editions[e.ID] = stored
	return stored, nil
}

func (m memEditions) SetPlaylist(_ context.Context, id uint, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.editions[id]
	m.writes++
	e.PlaylistURL = url
	m.editions[id] = e
	return nil
}

func (m memEditions) SetResultsRevealed(_ context.Context, id uint, revealed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.editions[id]
	m.writes++
	e.ResultsRevealed = revealed
	m.editions[id] = e
	return nil
}

func (m memEditions) AdvancePhase(_ context.Context, id uint, from, to domain.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editions[id]
	if !ok || e.Phase != from {
		return ErrPhaseChanged
	}
	m.writes++
	e.Phase = to
	m.editions[id] = e
	return nil
}

func (m memEditions) CloseSubmissions(_ context.Context, id uint, plan domain.ClosePlan) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.editions[id]
	if !ok {
		return nil, ErrEditionNotFound
	}
	if e.Phase != domain.PhaseSubmission {
		return nil, ErrPhaseChanged
	}

	var subs []domain.Submission
	for _, s := range m.submissions {
		if s.EditionID == id && s.Eligible() {
			subs = append(subs, s)
		}
	}
	slices.SortFunc(subs, func(a, b domain.Submission) int { return cmp.Compare(a.ID, b.ID) })

	order, err := plan(e, subs, len(m.contests[e.ContestID].Participants))
	if err != nil {
		return nil, err
	}

	m.writes++
	ordered := make([]domain.Submission, 0, len(order))
	for i, sid := range order {
		position := i + 1
		s := m.submissions[sid]
		s.RunningOrder = &position
		m.submissions[sid] = s
		ordered = append(ordered, s)
	}
	e.Phase = domain.PhaseVoting
	m.editions[id] = e
	return ordered, nil
}

type memSubmissions struct{ *memStore }

func (m memSubmissions) Create(_ context.Context, s domain.Submission, phase domain.Phase) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.inPhase(s.EditionID, phase); err != nil {
		return domain.Submission{}, err
	}
	for _, other := range m.submissions {
		if other.EditionID == s.EditionID && other.UserID == s.UserID && other.Eligible() {
			return domain.Submission{}, ErrDuplicateSubmission
		}
	}
	m.writes++
	s.ID = m.id()
	s.CreatedAt = time.Now()
	m.submissions[s.ID] = s
	return s, nil
}

func (m memSubmissions) FindByID(_ context.Context, id uint) (domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return domain.Submission{}, ErrSubmissionNotFound
	}
	return s, nil
}

func (m memSubmissions) FindByEdition(_ context.Context, editionID uint) ([]domain.Submission, error) {
	defer m.read("FindByEdition")
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for _, s := range m.submissions {
		if s.EditionID == editionID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Submission) int {
		switch {
		case a.RunningOrder != nil && b.RunningOrder != nil:
			if c := cmp.Compare(*a.RunningOrder, *b.RunningOrder); c != 0 {
				return c
			}
		case a.RunningOrder != nil:
			return -1
		case b.RunningOrder != nil:
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m memSubmissions) FindByEditions(_ context.Context, editionIDs []uint) ([]domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Submission
	for _, s := range m.submissions {
		if slices.Contains(editionIDs, s.EditionID) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Submission) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m memSubmissions) FindActiveByOwner(_ context.Context, editionID uint, userID string) (domain.Submission, bool, error) {
	defer m.read("FindActiveByOwner")
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.submissions {
		if s.EditionID == editionID && s.UserID == userID && s.Eligible() {
			return s, true, nil
		}
	}
	return domain.Submission{}, false, nil
}

func (m memSubmissions) CountEligible(_ context.Context, editionID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.submissions {
		if s.EditionID == editionID && s.Eligible() {
			n++
		}
	}
	return n, nil
}

func (m memSubmissions) Reject(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.submissions[id]
	if !ok {
		return ErrSubmissionNotFound
	}
	m.writes++
	s.Rejected, s.Score, s.Rank = true, nil, nil
	m.submissions[id] = s
	return nil
}

func (m memSubmissions) UpdateScore(_ context.Context, u domain.ScoreUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failScore[u.SubmissionID]; err != nil {
		return err
	}
	s, ok := m.submissions[u.SubmissionID]
	if !ok {
		return ErrSubmissionNotFound
	}
	m.writes++
	score, rank := u.Score, u.Rank
	s.Score, s.Rank = &score, &rank
	m.submissions[u.SubmissionID] = s
	return nil
}

type memBallots struct{ *memStore }

func (m memBallots) CreateRanking(_ context.Context, r domain.Ranking, phase domain.Phase) (domain.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.inPhase(r.EditionID, phase); err != nil {
		return domain.Ranking{}, err
	}
	for _, other := range m.rankings {
		if other.EditionID == r.EditionID && other.UserID == r.UserID {
			return domain.Ranking{}, ErrDuplicateRanking
		}
	}
	m.writes++
	r.ID = m.id()
	r.Entries = slices.Clone(r.Entries)
	m.rankings = append(m.rankings, r)
	for i, d := range m.drafts {
		if d.EditionID == r.EditionID && d.UserID == r.UserID {
			m.drafts[i].Locked = true
			m.drafts[i].Entries = slices.Clone(r.Entries)
		}
	}
	return r, nil
}

func (m memBallots) FindRanking(_ context.Context, editionID uint, userID string) (domain.Ranking, error) {
	defer m.read("FindRanking")
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rankings {
		if r.EditionID == editionID && r.UserID == userID {
			return r, nil
		}
	}
	return domain.Ranking{}, ErrRankingNotFound
}

func (m memBallots) FindRankingsByEdition(_ context.Context, editionID uint) ([]domain.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ranking
	for _, r := range m.rankings {
		if r.EditionID == editionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m memBallots) CountRankings(ctx context.Context, editionID uint) (int, error) {
	rankings, err := m.FindRankingsByEdition(ctx, editionID)
	return len(rankings), err
}

func (m memBallots) SaveDraft(_ context.Context, d domain.SavedRanking) (domain.SavedRanking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.drafts {
		if other.EditionID == d.EditionID && other.UserID == d.UserID {
			if other.Locked {
				return domain.SavedRanking{}, ErrDraftLocked
			}
			m.writes++
			m.drafts[i].Entries = slices.Clone(d.Entries)
			return m.drafts[i], nil
		}
	}
	m.writes++
	d.ID = m.id()
	d.Entries = slices.Clone(d.Entries)
	m.drafts = append(m.drafts, d)
	return d, nil
}

func (m memBallots) FindDraft(_ context.Context, editionID uint, userID string) (domain.SavedRanking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drafts {
		if d.EditionID == editionID && d.UserID == userID {
			return d, nil
		}
	}
	return domain.SavedRanking{}, ErrDraftNotFound
}

func (m memBallots) CreateTelevote(_ context.Context, t domain.Televote, phase domain.Phase) (domain.Televote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.inPhase(t.EditionID, phase); err != nil {
		return domain.Televote{}, err
	}
	m.writes++
	t.ID = m.id()
	m.televotes = append(m.televotes, t)
	return t, nil
}

func (m memBallots) FindTelevotesByEdition(_ context.Context, editionID uint) ([]domain.Televote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Televote
	for _, t := range m.televotes {
		if t.EditionID == editionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memBallots) CreateVotes(_ context.Context, votes []domain.Vote, phase domain.Phase) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(votes) > 0 {
		if err := m.inPhase(votes[0].EditionID, phase); err != nil {
			return nil, err
		}
	}
	for _, v := range votes {
		for _, other := range m.votes {
			if other.EditionID == v.EditionID && other.FromUserID == v.FromUserID {
				return nil, ErrDuplicateVote
			}
		}
	}
	m.writes++
	out := make([]domain.Vote, len(votes))
	for i, v := range votes {
		v.ID = m.id()
		m.votes = append(m.votes, v)
		out[i] = v
	}
	return out, nil
}

func (m memBallots) FindVotesByEdition(_ context.Context, editionID uint) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Vote
	for _, v := range m.votes {
		if v.EditionID == editionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m memBallots) HasVoted(_ context.Context, editionID uint, userID string) (bool, error) {
	defer m.read("HasVoted")
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.votes {
		if v.EditionID == editionID && v.FromUserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type memProfiles struct{ *memStore }

func (m memProfiles) Confirm(_ context.Context, p domain.Profile) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.profiles[p.UserID]; ok {
		return stored, nil
	}
	m.writes++
	m.profiles[p.UserID] = p
	return p, nil
}

func (m memProfiles) FindByUserID(_ context.Context, userID string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (m memProfiles) Rename(_ context.Context, userID, name string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	m.writes++
	p.DisplayName = name
	m.profiles[userID] = p
	return p, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.PhaseChange
}

func (n *recordingNotifier) PhaseChanged(change domain.PhaseChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) all() []domain.PhaseChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.changes)
}

// fixture wires every service to one memStore.
type fixture struct {
	store    *memStore
	notifier *recordingNotifier
	now      time.Time

	contests    *ContestService
	editions    *EditionService
	submissions *SubmissionService
	ballots     *BallotService
	results     *ResultsService
	profiles    *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	contests, editions := memContests{store}, memEditions{store}
	subs, ballots := memSubmissions{store}, memBallots{store}
	notifier := &recordingNotifier{}

	f := &fixture{
		store:       store,
		notifier:    notifier,
		now:         time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		contests:    NewContestService(contests, editions),
		editions:    NewEditionService(contests, editions, subs, ballots, notifier, 4),
		submissions: NewSubmissionService(contests, editions, subs),
		ballots:     NewBallotService(contests, editions, subs, ballots),
		results:     NewResultsService(contests, editions, subs, ballots),
		profiles:    NewProfileService(memProfiles{store}),
	}
	f.contests.newJoinCode = func() string { return "JOIN1234" }
	f.editions.now = func() time.Time { return f.now }
	// Reversal keeps running order assertions deterministic.
	f.editions.shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	return f
}

// seedContest creates a contest hosted by host with the given extra
// participants.
func (f *fixture) seedContest(t *testing.T, host string, participants ...string) domain.Contest {
	t.Helper()
	ctx := context.Background()

	c, err := f.contests.CreateContest(ctx, host, domain.Contest{Name: "Friends Song Contest"})
	require.NoError(t, err)
	for _, p := range participants {
		_, err = f.contests.JoinContest(ctx, p, c.ID, "JOIN1234")
		require.NoError(t, err)
	}

	c, err = f.contests.GetContest(ctx, host, c.ID)
	require.NoError(t, err)
	return c
}

// seedEdition stores an edition directly in the given phase.
func (f *fixture) seedEdition(t *testing.T, contestID uint, phase domain.Phase, mutate ...func(*domain.Edition)) domain.Edition {
	t.Helper()

	e := domain.Edition{
		ContestID:       contestID,
		Name:            "Edition",
		SubmissionClose: domain.ClosePolicyManually,
		VotingClose:     domain.ClosePolicyManually,
		Phase:           phase,
	}
	for _, m := range mutate {
		m(&e)
	}
	e, err := memEditions{f.store}.Create(context.Background(), e)
	require.NoError(t, err)
	return e
}

// seedSubmission stores an entry directly in whatever phase the edition is
// in, bypassing the service checks.
func (f *fixture) seedSubmission(t *testing.T, editionID uint, userID string) domain.Submission {
	t.Helper()

	s, err := memSubmissions{f.store}.Create(context.Background(), domain.Submission{
		EditionID: editionID,
		UserID:    userID,
		SongTitle: "Song by " + userID,
		Artist:    userID,
	}, f.edition(t, editionID).Phase)
	require.NoError(t, err)
	return s
}

func (f *fixture) submission(t *testing.T, id uint) domain.Submission {
	t.Helper()
	s, err := memSubmissions{f.store}.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) edition(t *testing.T, id uint) domain.Edition {
	t.Helper()
	e, err := memEditions{f.store}.FindByID(context.Background(), id)
	require.NoError(t, err)
	return e
}
