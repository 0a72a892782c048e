package store_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docmill/docgate/models"
	"github.com/docmill/docgate/store"
)

func setUpAuthLogStore(t *testing.T) *store.SQLiteAuthLogStore {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	goose.SetBaseFS(os.DirFS("../migrations"))
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatal(err)
	}
	if err := goose.Up(db, "."); err != nil {
		t.Fatal(err)
	}

	return store.NewSQLiteAuthLogStore(db)
}

func Test_Record(t *testing.T) {
	s := setUpAuthLogStore(t)
	ctx := context.Background()

	err := s.Record(ctx, models.AuthEvent{
		Type:       models.AuthEventLoginSuccess,
		Username:   "administrator",
		RemoteAddr: "127.0.0.1:51000",
	})
	require.NoError(t, err)

	events, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, models.AuthEventLoginSuccess, events[0].Type)
	assert.Equal(t, "administrator", events[0].Username)
	assert.Equal(t, "127.0.0.1:51000", events[0].RemoteAddr)
	assert.WithinDuration(t, time.Now().UTC(), events[0].CreatedAt, time.Minute)
}

func Test_Recent(t *testing.T) {
	s := setUpAuthLogStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, typ := range []models.AuthEventType{
		models.AuthEventLoginFailure,
		models.AuthEventLoginSuccess,
		models.AuthEventLogout,
	} {
		err := s.Record(ctx, models.AuthEvent{
			Type:      typ,
			Username:  "administrator",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		events, err := s.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, models.AuthEventLogout, events[0].Type)
		assert.Equal(t, models.AuthEventLoginFailure, events[2].Type)
	})

	t.Run("limit applied", func(t *testing.T) {
		events, err := s.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("default limit on zero", func(t *testing.T) {
		events, err := s.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})
}
