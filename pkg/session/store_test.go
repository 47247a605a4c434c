package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mergington/signupboard/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "session.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptySlot(t *testing.T) {
	s := openTestStore(t)
	u, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSaveLoadClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, board.User{Username: "mrodriguez", DisplayName: "Mr. Rodriguez", Role: "teacher"}))
	u, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	// Only the identity is persisted.
	assert.Equal(t, board.User{Username: "mrodriguez", DisplayName: "Mr. Rodriguez"}, *u)

	require.NoError(t, s.Save(ctx, board.User{Username: "mchen", DisplayName: "Ms. Chen"}))
	u, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mchen", u.Username)

	require.NoError(t, s.Clear(ctx))
	u, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.Clear(ctx))
}

func TestSlotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, board.User{Username: "mchen", DisplayName: "Ms. Chen"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	u, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ms. Chen", u.DisplayName)
	assert.Equal(t, path, s.Path())
}

func TestLoadCorruptSlot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.sql.ExecContext(ctx, "INSERT INTO kv(key, value) VALUES(?, ?)", currentUserKey, "{not json")
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptSlot)
}
