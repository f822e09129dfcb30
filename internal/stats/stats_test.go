package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lgramweb/lgram-web/internal/models"
)

// Canned-value repository stubs. Only the read paths the aggregator uses
// return data; the write paths are never called here.

type stubUsers struct {
	total int
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) error { return nil }
func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, models.ErrNotFound
}
func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, models.ErrNotFound
}
func (s *stubUsers) Count(ctx context.Context) (int, error)               { return s.total, nil }
func (s *stubUsers) UpdateProfile(ctx context.Context, u *models.User) error { return nil }
func (s *stubUsers) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

type stubLoginLogs struct {
	byUser    int
	total     int
	recent    int
	lastLogin *time.Time

	recentSince time.Time
	recentUntil time.Time
}

func (s *stubLoginLogs) Create(ctx context.Context, entry *models.LoginLog) error { return nil }
func (s *stubLoginLogs) LatestOpen(ctx context.Context, userID uuid.UUID) (*models.LoginLog, error) {
	return nil, models.ErrNotFound
}
func (s *stubLoginLogs) StampLogout(ctx context.Context, id uuid.UUID, t time.Time) error {
	return nil
}
func (s *stubLoginLogs) CountSuccessfulByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.byUser, nil
}
func (s *stubLoginLogs) LastLoginTime(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	return s.lastLogin, nil
}
func (s *stubLoginLogs) CountSuccessful(ctx context.Context) (int, error) { return s.total, nil }
func (s *stubLoginLogs) CountSuccessfulBetween(ctx context.Context, since, until time.Time) (int, error) {
	s.recentSince = since
	s.recentUntil = until
	return s.recent, nil
}
func (s *stubLoginLogs) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.LoginLog, error) {
	return nil, nil
}

type stubActivityLogs struct {
	byUser     int
	byAction   int
	total      int
	recent     int
	mostCommon []models.ActionCount
	topUsers   []models.UserActivityCount

	actionAsked models.ActionKind
	limitAsked  int
}

func (s *stubActivityLogs) Create(ctx context.Context, entry *models.ActivityLog) error { return nil }
func (s *stubActivityLogs) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.byUser, nil
}
func (s *stubActivityLogs) CountByUserAndAction(ctx context.Context, userID uuid.UUID, action models.ActionKind) (int, error) {
	s.actionAsked = action
	return s.byAction, nil
}
func (s *stubActivityLogs) MostCommonActions(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActionCount, error) {
	s.limitAsked = limit
	return s.mostCommon, nil
}
func (s *stubActivityLogs) Count(ctx context.Context) (int, error) { return s.total, nil }
func (s *stubActivityLogs) CountBetween(ctx context.Context, since, until time.Time) (int, error) {
	return s.recent, nil
}
func (s *stubActivityLogs) TopActiveUsers(ctx context.Context, limit int) ([]models.UserActivityCount, error) {
	return s.topUsers, nil
}
func (s *stubActivityLogs) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error) {
	return nil, nil
}
func (s *stubActivityLogs) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
func (s *stubActivityLogs) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type stubTexts struct {
	total int
}

func (s *stubTexts) Create(ctx context.Context, text *models.GeneratedText) error { return nil }
func (s *stubTexts) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.GeneratedText, error) {
	return nil, nil
}
func (s *stubTexts) ListBySessionKey(ctx context.Context, key string, limit int) ([]*models.GeneratedText, error) {
	return nil, nil
}
func (s *stubTexts) Count(ctx context.Context) (int, error)                    { return s.total, nil }
func (s *stubTexts) DeleteByUser(ctx context.Context, id uuid.UUID) (int, error) { return 0, nil }
func (s *stubTexts) DeleteBySessionKey(ctx context.Context, key string) (int, error) {
	return 0, nil
}
func (s *stubTexts) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
func (s *stubTexts) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type stubSessions struct {
	active int
	calls  int
}

func (s *stubSessions) ActiveCount(ctx context.Context) (int, error) {
	s.calls++
	return s.active, nil
}

func TestUserStatistics(t *testing.T) {
	t.Parallel()

	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logins := &stubLoginLogs{byUser: 4, lastLogin: &last}
	activities := &stubActivityLogs{
		byUser:   17,
		byAction: 9,
		mostCommon: []models.ActionCount{
			{Action: models.ActionGenerateText, Count: 9},
			{Action: models.ActionViewHistory, Count: 3},
		},
	}

	agg := NewAggregator(&stubUsers{}, logins, activities, &stubTexts{}, nil)
	got, err := agg.UserStatistics(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("UserStatistics() error: %v", err)
	}

	if got.TotalLogins != 4 || got.TotalActivities != 17 || got.TextGenerations != 9 {
		t.Errorf("UserStatistics() = %+v", got)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(last) {
		t.Errorf("LastLogin = %v, want %v", got.LastLogin, last)
	}
	if len(got.MostCommonActions) != 2 {
		t.Errorf("MostCommonActions has %d entries, want 2", len(got.MostCommonActions))
	}
	if activities.actionAsked != models.ActionGenerateText {
		t.Errorf("generation count queried action %q, want generate_text", activities.actionAsked)
	}
	if activities.limitAsked != TopActionsLimit {
		t.Errorf("most common actions limit = %d, want %d", activities.limitAsked, TopActionsLimit)
	}
}

func TestUserStatisticsEmptyAccount(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(&stubUsers{}, &stubLoginLogs{}, &stubActivityLogs{}, &stubTexts{}, nil)
	got, err := agg.UserStatistics(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("UserStatistics() error: %v", err)
	}

	if got.TotalLogins != 0 || got.TotalActivities != 0 || got.TextGenerations != 0 {
		t.Errorf("UserStatistics() = %+v, want zero counts", got)
	}
	if got.LastLogin != nil {
		t.Errorf("LastLogin = %v, want nil", got.LastLogin)
	}
}

func TestSystemSummary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	logins := &stubLoginLogs{total: 100, recent: 6}
	activities := &stubActivityLogs{total: 400, recent: 25}
	sessions := &stubSessions{active: 3}

	agg := NewAggregator(&stubUsers{total: 12}, logins, activities, &stubTexts{total: 80}, sessions)
	got, err := agg.SystemSummary(context.Background(), now)
	if err != nil {
		t.Fatalf("SystemSummary() error: %v", err)
	}

	if got.TotalUsers != 12 || got.TotalSuccessfulLogins != 100 ||
		got.TotalActivities != 400 || got.TotalGeneratedTexts != 80 {
		t.Errorf("SystemSummary() totals = %+v", got)
	}
	if got.RecentLogins != 6 || got.RecentActivities != 25 {
		t.Errorf("SystemSummary() recents = %+v", got)
	}
	if got.ActiveSessions != 3 || sessions.calls != 1 {
		t.Errorf("ActiveSessions = %d (counter calls %d), want 3 (1 call)", got.ActiveSessions, sessions.calls)
	}

	wantSince := now.Add(-RecentWindow)
	if !logins.recentSince.Equal(wantSince) || !logins.recentUntil.Equal(now) {
		t.Errorf("recent window = [%v, %v), want [%v, %v)",
			logins.recentSince, logins.recentUntil, wantSince, now)
	}
}

func TestSystemSummaryWithoutSessionCounter(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(&stubUsers{total: 1}, &stubLoginLogs{}, &stubActivityLogs{}, &stubTexts{}, nil)
	got, err := agg.SystemSummary(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SystemSummary() error: %v", err)
	}
	if got.ActiveSessions != 0 {
		t.Errorf("ActiveSessions = %d without a counter, want 0", got.ActiveSessions)
	}
}
