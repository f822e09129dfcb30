package export

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lgramweb/lgram-web/internal/models"
)

type fakeLoginLogs struct {
	entries   []*models.LoginLog
	limitSeen int
}

func (f *fakeLoginLogs) Create(ctx context.Context, entry *models.LoginLog) error { return nil }
func (f *fakeLoginLogs) LatestOpen(ctx context.Context, id uuid.UUID) (*models.LoginLog, error) {
	return nil, models.ErrNotFound
}
func (f *fakeLoginLogs) StampLogout(ctx context.Context, id uuid.UUID, t time.Time) error {
	return nil
}
func (f *fakeLoginLogs) CountSuccessfulByUser(ctx context.Context, id uuid.UUID) (int, error) {
	return 0, nil
}
func (f *fakeLoginLogs) LastLoginTime(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	return nil, nil
}
func (f *fakeLoginLogs) CountSuccessful(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeLoginLogs) CountSuccessfulBetween(ctx context.Context, since, until time.Time) (int, error) {
	return 0, nil
}
func (f *fakeLoginLogs) ListByUser(ctx context.Context, id uuid.UUID, limit int) ([]*models.LoginLog, error) {
	f.limitSeen = limit
	return f.entries, nil
}

type fakeActivityLogs struct {
	entries []*models.ActivityLog
}

func (f *fakeActivityLogs) Create(ctx context.Context, entry *models.ActivityLog) error { return nil }
func (f *fakeActivityLogs) CountByUser(ctx context.Context, id uuid.UUID) (int, error) {
	return 0, nil
}
func (f *fakeActivityLogs) CountByUserAndAction(ctx context.Context, id uuid.UUID, action models.ActionKind) (int, error) {
	return 0, nil
}
func (f *fakeActivityLogs) MostCommonActions(ctx context.Context, id uuid.UUID, limit int) ([]models.ActionCount, error) {
	return nil, nil
}
func (f *fakeActivityLogs) Count(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeActivityLogs) CountBetween(ctx context.Context, since, until time.Time) (int, error) {
	return 0, nil
}
func (f *fakeActivityLogs) TopActiveUsers(ctx context.Context, limit int) ([]models.UserActivityCount, error) {
	return nil, nil
}
func (f *fakeActivityLogs) ListByUser(ctx context.Context, id uuid.UUID, limit int) ([]*models.ActivityLog, error) {
	return f.entries, nil
}
func (f *fakeActivityLogs) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
func (f *fakeActivityLogs) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

type fakeTexts struct {
	entries []*models.GeneratedText
}

func (f *fakeTexts) Create(ctx context.Context, text *models.GeneratedText) error { return nil }
func (f *fakeTexts) ListByUser(ctx context.Context, id uuid.UUID, limit int) ([]*models.GeneratedText, error) {
	return f.entries, nil
}
func (f *fakeTexts) ListBySessionKey(ctx context.Context, key string, limit int) ([]*models.GeneratedText, error) {
	return nil, nil
}
func (f *fakeTexts) Count(ctx context.Context) (int, error)                      { return 0, nil }
func (f *fakeTexts) DeleteByUser(ctx context.Context, id uuid.UUID) (int, error) { return 0, nil }
func (f *fakeTexts) DeleteBySessionKey(ctx context.Context, key string) (int, error) {
	return 0, nil
}
func (f *fakeTexts) CountAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
func (f *fakeTexts) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func TestBuild(t *testing.T) {
	t.Parallel()

	user := &models.User{
		ID:        uuid.New(),
		Username:  "alice",
		Email:     "alice@example.com",
		CreatedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	loginTime := time.Date(2025, 5, 1, 8, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	logoutTime := loginTime.Add(45 * time.Minute)
	logins := &fakeLoginLogs{entries: []*models.LoginLog{
		{UserID: user.ID, LoginTime: loginTime, LogoutTime: &logoutTime, IPAddress: "1.2.3.4", Successful: true, SessionKey: "sess-1"},
		{UserID: user.ID, LoginTime: loginTime.Add(time.Hour), IPAddress: "1.2.3.4", Successful: false},
	}}
	activities := &fakeActivityLogs{entries: []*models.ActivityLog{
		{Action: models.ActionGenerateText, Description: "Generated text", Timestamp: loginTime, Data: models.ActivityData{"input_length": 2}},
	}}
	texts := &fakeTexts{entries: []*models.GeneratedText{
		{InputText: "hello world", OutputText: "hello world again", CreatedAt: loginTime},
	}}

	exporter := NewExporter(logins, activities, texts)
	doc, err := exporter.Build(context.Background(), user, 0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if doc.ExportDate == "" {
		t.Error("ExportDate is empty")
	}
	if _, err := time.Parse(time.RFC3339, doc.ExportDate); err != nil {
		t.Errorf("ExportDate %q is not RFC 3339: %v", doc.ExportDate, err)
	}

	if doc.Profile.Username != "alice" || doc.Profile.Email != "alice@example.com" {
		t.Errorf("Profile = %+v", doc.Profile)
	}
	if doc.Profile.CreatedAt != "2024-03-01T10:30:00Z" {
		t.Errorf("Profile.CreatedAt = %q", doc.Profile.CreatedAt)
	}

	if len(doc.Texts) != 1 || len(doc.Activities) != 1 || len(doc.Logins) != 2 {
		t.Fatalf("histories = %d/%d/%d texts/activities/logins", len(doc.Texts), len(doc.Activities), len(doc.Logins))
	}

	// Zoned timestamps are normalized to UTC on the way out.
	if doc.Logins[0].LoginTime != "2025-05-01T06:00:00Z" {
		t.Errorf("LoginTime = %q, want UTC", doc.Logins[0].LoginTime)
	}
	if doc.Logins[0].LogoutTime == nil || *doc.Logins[0].LogoutTime != "2025-05-01T06:45:00Z" {
		t.Errorf("LogoutTime = %v", doc.Logins[0].LogoutTime)
	}
	if doc.Logins[1].LogoutTime != nil {
		t.Errorf("open login exported with LogoutTime %v, want nil", doc.Logins[1].LogoutTime)
	}

	if doc.Activities[0].Action != models.ActionGenerateText.String() {
		t.Errorf("activity action = %q", doc.Activities[0].Action)
	}
	if doc.Texts[0].InputText != "hello world" {
		t.Errorf("text input = %q", doc.Texts[0].InputText)
	}
}

func TestBuildPassesLimitThrough(t *testing.T) {
	t.Parallel()

	logins := &fakeLoginLogs{}
	exporter := NewExporter(logins, &fakeActivityLogs{}, &fakeTexts{})

	user := &models.User{ID: uuid.New(), Username: "bob", CreatedAt: time.Now()}
	if _, err := exporter.Build(context.Background(), user, 25); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if logins.limitSeen != 25 {
		t.Errorf("login history limit = %d, want 25", logins.limitSeen)
	}
}

func TestBuildEmptyHistories(t *testing.T) {
	t.Parallel()

	exporter := NewExporter(&fakeLoginLogs{}, &fakeActivityLogs{}, &fakeTexts{})
	user := &models.User{ID: uuid.New(), Username: "carol", CreatedAt: time.Now()}

	doc, err := exporter.Build(context.Background(), user, 0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Empty histories export as empty arrays, never null.
	if doc.Texts == nil || doc.Activities == nil || doc.Logins == nil {
		t.Error("empty history slices are nil")
	}
}
