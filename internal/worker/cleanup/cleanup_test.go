package cleanup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/evno/internal/model"
	"github.com/hitoshi/evno/internal/repository"
)

// mockSessionRepo はSessionRepositoryのテスト用モック。
type mockSessionRepo struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(_ context.Context, _ *model.Session) error { return nil }

func (m *mockSessionRepo) FindByID(_ context.Context, _ string) (*model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(_ context.Context, _ string) error { return nil }

func (m *mockSessionRepo) DeleteByUserID(_ context.Context, _ string) error { return nil }

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

// mockAnnouncementRepo はAnnouncementRepositoryのテスト用モック。
type mockAnnouncementRepo struct {
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockAnnouncementRepo) FindByVendorAndLink(_ context.Context, _, _ string) (*model.Announcement, error) {
	return nil, nil
}

func (m *mockAnnouncementRepo) Create(_ context.Context, _ *model.Announcement) error { return nil }

func (m *mockAnnouncementRepo) Update(_ context.Context, _ *model.Announcement) error { return nil }

func (m *mockAnnouncementRepo) ListRecent(_ context.Context, _ int) ([]repository.AnnouncementWithVendor, error) {
	return nil, nil
}

func (m *mockAnnouncementRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

var _ repository.AnnouncementRepository = (*mockAnnouncementRepo)(nil)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestNewCleanupJob_DefaultRetention(t *testing.T) {
	var buf bytes.Buffer
	j := NewCleanupJob(&mockSessionRepo{}, &mockAnnouncementRepo{}, newTestLogger(&buf))

	if j.RetentionDays != 180 {
		t.Errorf("RetentionDays = %d, want 180", j.RetentionDays)
	}
}

func TestCleanupJob_Run_DeletesExpiredData(t *testing.T) {
	var buf bytes.Buffer

	sessionRepo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}
	annRepo := &mockAnnouncementRepo{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 7, nil
		},
	}

	j := NewCleanupJob(sessionRepo, annRepo, newTestLogger(&buf))

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, `"deleted_sessions":3`) {
		t.Errorf("削除セッション数がログに記録されるべき: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"deleted_announcements":7`) {
		t.Errorf("削除お知らせ数がログに記録されるべき: %s", logOutput)
	}
}

func TestCleanupJob_Run_CutoffUsesRetentionDays(t *testing.T) {
	var buf bytes.Buffer

	var receivedCutoff time.Time
	annRepo := &mockAnnouncementRepo{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			receivedCutoff = cutoff
			return 0, nil
		},
	}

	j := NewCleanupJob(&mockSessionRepo{}, annRepo, newTestLogger(&buf))
	j.RetentionDays = 30

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	expected := time.Now().AddDate(0, 0, -30)
	diff := receivedCutoff.Sub(expected)
	if diff > time.Minute || diff < -time.Minute {
		t.Errorf("cutoff = %v, 期待は約30日前", receivedCutoff)
	}
}

func TestCleanupJob_Run_SessionDeleteError(t *testing.T) {
	var buf bytes.Buffer

	sessionRepo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	j := NewCleanupJob(sessionRepo, &mockAnnouncementRepo{}, newTestLogger(&buf))

	if err := j.Run(context.Background()); err == nil {
		t.Fatal("セッション削除失敗時はエラーを返すべき")
	}
}

func TestCleanupJob_Run_AnnouncementDeleteError(t *testing.T) {
	var buf bytes.Buffer

	annRepo := &mockAnnouncementRepo{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}

	j := NewCleanupJob(&mockSessionRepo{}, annRepo, newTestLogger(&buf))

	if err := j.Run(context.Background()); err == nil {
		t.Fatal("お知らせ削除失敗時はエラーを返すべき")
	}
}

func TestCleanupJob_Run_NoDataToDelete(t *testing.T) {
	var buf bytes.Buffer

	// 削除対象がない場合でもエラーにならない
	j := NewCleanupJob(&mockSessionRepo{}, &mockAnnouncementRepo{}, newTestLogger(&buf))

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("削除対象なしでもエラーを返すべきでない: %v", err)
	}
}
