package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/satlab/sat-prep-api/internal/models"
	appErrors "github.com/satlab/sat-prep-api/pkg/errors"
)

const (
	userA = "11111111-1111-4111-8111-111111111111"
	userB = "22222222-2222-4222-8222-222222222222"
	userC = "33333333-3333-4333-8333-333333333333"
)

type mockActivityRepo struct {
	progress    map[string][]models.TopicProgress
	examCounts  map[string]int
	progressErr error
	examErr     error
}

func (m *mockActivityRepo) TopicProgressForUser(ctx context.Context, userID string) ([]models.TopicProgress, error) {
	if m.progressErr != nil {
		return nil, m.progressErr
	}
	return m.progress[userID], nil
}

func (m *mockActivityRepo) ExamAttemptCount(ctx context.Context, userID string) (int, error) {
	if m.examErr != nil {
		return 0, m.examErr
	}
	return m.examCounts[userID], nil
}

type mockStatsStore struct {
	entries    map[string]models.UserStatsCacheEntry
	order      []string
	upsertErr  error
	loadAllErr error
	upserts    int
}

func newMockStatsStore() *mockStatsStore {
	return &mockStatsStore{entries: make(map[string]models.UserStatsCacheEntry)}
}

func (m *mockStatsStore) Upsert(ctx context.Context, entry models.UserStatsCacheEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if _, exists := m.entries[entry.UserID]; !exists {
		m.order = append(m.order, entry.UserID)
	}
	m.entries[entry.UserID] = entry
	m.upserts++
	return nil
}

func (m *mockStatsStore) Get(ctx context.Context, userID string) (*models.UserStatsCacheEntry, error) {
	entry, ok := m.entries[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &entry, nil
}

func (m *mockStatsStore) LoadAll(ctx context.Context) ([]models.UserStatsCacheEntry, error) {
	if m.loadAllErr != nil {
		return nil, m.loadAllErr
	}
	out := make([]models.UserStatsCacheEntry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out, nil
}

type mockIdentityRepo struct {
	known map[string]bool
	err   error
}

func (m *mockIdentityRepo) Exists(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.known[id], nil
}

func newStatsService(activity *mockActivityRepo, store *mockStatsStore, identity *mockIdentityRepo) *StatsService {
	svc := NewStatsService(activity, store, identity, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func allKnown(ids ...string) *mockIdentityRepo {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &mockIdentityRepo{known: known}
}

func TestRefreshUserStatsAggregatesQuizAndExamActivity(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {
				{UserID: userA, TopicID: "t1", TotalQuestions: 25, CorrectTotal: 20},
				{UserID: userA, TopicID: "t2", TotalQuestions: 15, CorrectTotal: 10},
			},
		},
		examCounts: map[string]int{userA: 10},
	}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))

	entry, err := svc.RefreshUserStats(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, 50, entry.TotalQuestions)
	assert.Equal(t, 75, entry.Accuracy)
	assert.Equal(t, entry.LastUpdated, store.entries[userA].LastUpdated)
}

func TestRefreshUserStatsZeroActivity(t *testing.T) {
	activity := &mockActivityRepo{}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))

	entry, err := svc.RefreshUserStats(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.TotalQuestions)
	assert.Equal(t, 0, entry.Accuracy)
	assert.Contains(t, store.entries, userA)
}

func TestRefreshUserStatsIdempotent(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 8, CorrectTotal: 1}},
		},
	}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))

	first, err := svc.RefreshUserStats(context.Background(), userA)
	require.NoError(t, err)
	second, err := svc.RefreshUserStats(context.Background(), userA)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.entries, 1)
}

func TestRefreshUserStatsRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		correct int
		want    int
	}{
		{"exact", 4, 3, 75},
		{"half rounds up", 8, 1, 13},
		{"third rounds down", 3, 1, 33},
		{"two thirds rounds up", 3, 2, 67},
		{"all correct", 10, 10, 100},
		{"none correct", 10, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			activity := &mockActivityRepo{
				progress: map[string][]models.TopicProgress{
					userA: {{UserID: userA, TopicID: "t1", TotalQuestions: tc.total, CorrectTotal: tc.correct}},
				},
			}
			svc := newStatsService(activity, newMockStatsStore(), allKnown(userA))

			entry, err := svc.RefreshUserStats(context.Background(), userA)
			require.NoError(t, err)
			assert.Equal(t, tc.want, entry.Accuracy)
		})
	}
}

func TestRefreshUserStatsExamsDoNotAffectAccuracy(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 10, CorrectTotal: 5}},
		},
		examCounts: map[string]int{userA: 90},
	}
	svc := newStatsService(activity, newMockStatsStore(), allKnown(userA))

	entry, err := svc.RefreshUserStats(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, 100, entry.TotalQuestions)
	assert.Equal(t, 50, entry.Accuracy)
}

func TestRefreshUserStatsUnknownUser(t *testing.T) {
	svc := newStatsService(&mockActivityRepo{}, newMockStatsStore(), allKnown(userB))

	_, err := svc.RefreshUserStats(context.Background(), userA)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRefreshUserStatsMalformedID(t *testing.T) {
	svc := newStatsService(&mockActivityRepo{}, newMockStatsStore(), allKnown())

	for _, id := range []string{"", "not-a-uuid"} {
		_, err := svc.RefreshUserStats(context.Background(), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, appErrors.ErrValidation)
	}
}

func TestRefreshUserStatsStoreFailure(t *testing.T) {
	activity := &mockActivityRepo{progressErr: errors.New("connection refused")}
	svc := newStatsService(activity, newMockStatsStore(), allKnown(userA))

	_, err := svc.RefreshUserStats(context.Background(), userA)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestRefreshUserStatsUpsertFailure(t *testing.T) {
	store := newMockStatsStore()
	store.upsertErr = errors.New("write failed")
	svc := newStatsService(&mockActivityRepo{}, store, allKnown(userA))

	_, err := svc.RefreshUserStats(context.Background(), userA)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestCachedStatsReadsWithoutRecompute(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 100, CorrectTotal: 90}},
		},
	}
	store := newMockStatsStore()
	require.NoError(t, store.Upsert(context.Background(), models.UserStatsCacheEntry{UserID: userA, TotalQuestions: 10, Accuracy: 50}))
	svc := newStatsService(activity, store, allKnown(userA))

	entry, err := svc.CachedStats(context.Background(), userA)
	require.NoError(t, err)
	// Stale by design: the read never touches the activity store.
	assert.Equal(t, 10, entry.TotalQuestions)
}

func TestCachedStatsZeroRowWhenNeverMaterialized(t *testing.T) {
	svc := newStatsService(&mockActivityRepo{}, newMockStatsStore(), allKnown(userA))

	entry, err := svc.CachedStats(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, userA, entry.UserID)
	assert.Zero(t, entry.TotalQuestions)
}

func TestCachedStatsUnknownUser(t *testing.T) {
	svc := newStatsService(&mockActivityRepo{}, newMockStatsStore(), allKnown(userB))

	_, err := svc.CachedStats(context.Background(), userA)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func seedEntries(t *testing.T, store *mockStatsStore, entries ...models.UserStatsCacheEntry) {
	t.Helper()
	for _, entry := range entries {
		require.NoError(t, store.Upsert(context.Background(), entry))
	}
}

func TestComputeRankingsPlacesUserInPopulation(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userB: {{UserID: userB, TopicID: "t1", TotalQuestions: 50, CorrectTotal: 25}},
		},
	}
	store := newMockStatsStore()
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userA, TotalQuestions: 100, Accuracy: 90},
		models.UserStatsCacheEntry{UserID: userC, TotalQuestions: 10, Accuracy: 10},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB, userC))

	rankings, err := svc.ComputeRankings(context.Background(), userB)
	require.NoError(t, err)

	assert.Equal(t, 2, rankings.QuestionsRanking.Position)
	assert.Equal(t, 3, rankings.QuestionsRanking.Total)
	assert.Equal(t, 67, rankings.QuestionsRanking.Percentile)

	assert.Equal(t, 2, rankings.AccuracyRanking.Position)
	assert.Equal(t, 3, rankings.AccuracyRanking.Total)
}

func TestComputeRankingsRefreshesCallerFirst(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 200, CorrectTotal: 100}},
		},
	}
	store := newMockStatsStore()
	// Stale snapshot that would rank last if not recomputed.
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userA, TotalQuestions: 1, Accuracy: 1},
		models.UserStatsCacheEntry{UserID: userB, TotalQuestions: 100, Accuracy: 80},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB))

	rankings, err := svc.ComputeRankings(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, 1, rankings.QuestionsRanking.Position)
	assert.Equal(t, 200, store.entries[userA].TotalQuestions)
}

func TestComputeRankingsExcludesZeroActivityUsers(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 10, CorrectTotal: 5}},
		},
	}
	store := newMockStatsStore()
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userB, TotalQuestions: 0, Accuracy: 0},
		models.UserStatsCacheEntry{UserID: userC, TotalQuestions: 20, Accuracy: 50},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB, userC))

	rankings, err := svc.ComputeRankings(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, 2, rankings.QuestionsRanking.Total)
	assert.Equal(t, 2, rankings.QuestionsRanking.Position)
}

func TestComputeRankingsDegenerateWhenAlone(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 10, CorrectTotal: 5}},
		},
	}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))

	rankings, err := svc.ComputeRankings(context.Background(), userA)
	require.NoError(t, err)

	want := models.RankingResult{Position: 1, Percentile: 0, Total: 1}
	assert.Equal(t, want, rankings.QuestionsRanking)
	assert.Equal(t, want, rankings.AccuracyRanking)
}

func TestComputeRankingsDegenerateWhenCallerIneligible(t *testing.T) {
	activity := &mockActivityRepo{}
	store := newMockStatsStore()
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userB, TotalQuestions: 100, Accuracy: 80},
		models.UserStatsCacheEntry{UserID: userC, TotalQuestions: 50, Accuracy: 60},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB, userC))

	rankings, err := svc.ComputeRankings(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, models.RankingResult{Position: 1, Percentile: 0, Total: 2}, rankings.QuestionsRanking)
}

func TestComputeRankingsLoadFailure(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 10, CorrectTotal: 5}},
		},
	}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))
	// Refresh in ComputeRankings writes fine, then the full load breaks.
	store.loadAllErr = errors.New("connection reset")

	_, err := svc.ComputeRankings(context.Background(), userA)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestComputeRankingsTiesAreDeterministic(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userB: {{UserID: userB, TopicID: "t1", TotalQuestions: 50, CorrectTotal: 40}},
		},
	}
	store := newMockStatsStore()
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userA, TotalQuestions: 50, Accuracy: 80},
		models.UserStatsCacheEntry{UserID: userC, TotalQuestions: 50, Accuracy: 80},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB, userC))

	first, err := svc.ComputeRankings(context.Background(), userB)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.ComputeRankings(context.Background(), userB)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeRankingsPercentileWithinBounds(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userC: {{UserID: userC, TopicID: "t1", TotalQuestions: 1, CorrectTotal: 1}},
		},
	}
	store := newMockStatsStore()
	seedEntries(t, store,
		models.UserStatsCacheEntry{UserID: userA, TotalQuestions: 100, Accuracy: 90},
		models.UserStatsCacheEntry{UserID: userB, TotalQuestions: 50, Accuracy: 50},
	)
	svc := newStatsService(activity, store, allKnown(userA, userB, userC))

	rankings, err := svc.ComputeRankings(context.Background(), userC)
	require.NoError(t, err)

	// Last place out of three: percentile 100, never beyond.
	assert.Equal(t, 3, rankings.QuestionsRanking.Position)
	assert.Equal(t, 100, rankings.QuestionsRanking.Percentile)
	assert.LessOrEqual(t, rankings.AccuracyRanking.Percentile, 100)
	assert.GreaterOrEqual(t, rankings.AccuracyRanking.Percentile, 1)
}

func TestRefreshTriggerProcessesJob(t *testing.T) {
	activity := &mockActivityRepo{
		progress: map[string][]models.TopicProgress{
			userA: {{UserID: userA, TopicID: "t1", TotalQuestions: 10, CorrectTotal: 5}},
		},
	}
	store := newMockStatsStore()
	svc := newStatsService(activity, store, allKnown(userA))

	trigger := NewRefreshTrigger(svc, RefreshTriggerConfig{Workers: 1, BufferSize: 4}, zap.NewNop())
	trigger.Start(context.Background())
	defer trigger.Stop()

	trigger.TriggerRefresh(userA)

	require.Eventually(t, func() bool {
		_, ok := store.entries[userA]
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshTriggerSwallowsEnqueueFailure(t *testing.T) {
	svc := newStatsService(&mockActivityRepo{}, newMockStatsStore(), allKnown(userA))
	trigger := NewRefreshTrigger(svc, RefreshTriggerConfig{Workers: 1, BufferSize: 1}, zap.NewNop())

	// Not started: enqueue fails internally and must not panic or surface.
	assert.NotPanics(t, func() {
		trigger.TriggerRefresh(userA)
	})
}

func TestRefreshTriggerDropsUnknownUser(t *testing.T) {
	store := newMockStatsStore()
	svc := newStatsService(&mockActivityRepo{}, store, allKnown(userB))

	trigger := NewRefreshTrigger(svc, RefreshTriggerConfig{Workers: 1, BufferSize: 4, MaxRetries: 2}, zap.NewNop())
	trigger.Start(context.Background())
	defer trigger.Stop()

	trigger.TriggerRefresh(userA)
	trigger.TriggerRefresh(userB)

	require.Eventually(t, func() bool {
		_, ok := store.entries[userB]
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, store.entries, userA)
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0, roundPercent(1, 0))
	assert.Equal(t, 0, roundPercent(0, 10))
	assert.Equal(t, 50, roundPercent(1, 2))
	assert.Equal(t, 13, roundPercent(1, 8))
	assert.Equal(t, 33, roundPercent(1, 3))
	assert.Equal(t, 67, roundPercent(2, 3))
	assert.Equal(t, 100, roundPercent(3, 3))
}
