package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TimeWtr/cronjob"
	"github.com/TimeWtr/cronjob/domain"
	"github.com/TimeWtr/cronjob/repository/dao"
	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() = _, %q, want <nil>", err)
	}
	if err = dao.InitTables(db); err != nil {
		t.Fatalf("InitTables() = %q, want <nil>", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestFireRepositoryRecordAndList(t *testing.T) {
	repo := NewFireRepository(dao.NewGormFireDAO(openTestDB(t)))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var fires []domain.Fire
	for i := 0; i < 3; i++ {
		f := domain.Fire{
			JobName:      "midnight",
			RunID:        "run-1",
			Expression:   "0 0 0",
			ScheduledAt:  base.AddDate(0, 0, i),
			DispatchedAt: base.AddDate(0, 0, i).Add(5 * time.Millisecond),
			Duration:     12 * time.Millisecond,
			Continue:     i < 2,
		}
		fires = append(fires, f)
		if err := repo.Record(ctx, f); err != nil {
			t.Fatalf("Record(#%d) = %q, want <nil>", i, err)
		}
	}
	if err := repo.Record(ctx, domain.Fire{JobName: "other", ScheduledAt: base}); err != nil {
		t.Fatalf("Record(other) = %q, want <nil>", err)
	}

	got, err := repo.ListByJob(ctx, "midnight", 2)

	if err != nil {
		t.Fatalf("ListByJob() = _, %q, want <nil>", err)
	}
	want := []domain.Fire{fires[2], fires[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListByJob() -want +got\n%s", diff)
	}
}

type flakyDAO struct {
	dao.FireDAO
	failures int
	inserts  int
	err      error
}

func (d *flakyDAO) Insert(context.Context, dao.FireRecord) error {
	d.inserts++
	if d.inserts <= d.failures {
		return d.err
	}
	return nil
}

func TestFireRepositoryRetry(t *testing.T) {
	daoErr := errors.New("database is locked")
	d := &flakyDAO{failures: 2, err: daoErr}
	repo := NewFireRepository(d, WithRetry(time.Millisecond, 3))

	if err := repo.Record(context.Background(), domain.Fire{JobName: "a"}); err != nil {
		t.Errorf("Record() = %q, want <nil>", err)
	}
	if got, want := d.inserts, 3; got != want {
		t.Errorf("inserts = %d, want %d", got, want)
	}
}

func TestFireRepositoryRetryExhausted(t *testing.T) {
	daoErr := errors.New("database is locked")
	d := &flakyDAO{failures: 10, err: daoErr}
	repo := NewFireRepository(d, WithRetry(time.Millisecond, 2))

	err := repo.Record(context.Background(), domain.Fire{JobName: "a"})

	if !errors.Is(err, daoErr) || !errors.Is(err, cronjob.ErrOverMaxCount) {
		t.Errorf("Record() = %v, want %q and %q", err, daoErr, cronjob.ErrOverMaxCount)
	}
	if got, want := d.inserts, 3; got != want {
		t.Errorf("inserts = %d, want %d", got, want)
	}
}

func TestFireRepositoryNoRetryByDefault(t *testing.T) {
	daoErr := errors.New("database is locked")
	d := &flakyDAO{failures: 1, err: daoErr}
	repo := NewFireRepository(d)

	if err := repo.Record(context.Background(), domain.Fire{JobName: "a"}); !errors.Is(err, daoErr) {
		t.Errorf("Record() = %v, want %q", err, daoErr)
	}
	if got, want := d.inserts, 1; got != want {
		t.Errorf("inserts = %d, want %d", got, want)
	}
}

type failEveryOther struct {
	dao.FireDAO
	inserts int
}

func (d *failEveryOther) Insert(context.Context, dao.FireRecord) error {
	d.inserts++
	if d.inserts%2 == 1 {
		return errors.New("database is locked")
	}
	return nil
}

func TestFireRepositorySharedStrategy(t *testing.T) {
	d := &failEveryOther{}
	repo := NewFireRepository(d, WithRetryStrategy(cronjob.NewFixedRetryStrategy(time.Millisecond, 1)))

	for i := 0; i < 3; i++ {
		if err := repo.Record(context.Background(), domain.Fire{JobName: "a"}); err != nil {
			t.Errorf("Record(#%d) = %q, want <nil>", i, err)
		}
	}
	if got, want := d.inserts, 6; got != want {
		t.Errorf("inserts = %d, want %d", got, want)
	}
}
