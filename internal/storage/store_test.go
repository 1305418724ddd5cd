package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/config"
)

// StoreTestSuite runs the same contract against every Store
// implementation.
type StoreTestSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
}

func (s *StoreTestSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *StoreTestSuite) TearDownTest() {
	s.store.Close()
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func() Store {
		st, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return st
	}})
}

func TestRedisStoreSuite(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	suite.Run(t, &StoreTestSuite{newStore: func() Store {
		st, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, DB: 1, Prefix: "storefront_test"})
		require.NoError(t, err)
		require.NoError(t, st.DeleteByPattern(context.Background(), "*"))
		return st
	}})
}

func (s *StoreTestSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestSetOverwrites() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, KeyAuthToken, "a"))
	s.Require().NoError(s.store.Set(ctx, KeyAuthToken, "b"))

	got, err := s.store.Get(ctx, KeyAuthToken)
	s.Require().NoError(err)
	s.Equal("b", got)
}

func (s *StoreTestSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "k", "v"))
	s.Require().NoError(s.store.Delete(ctx, "k"))

	_, err := s.store.Get(ctx, "k")
	s.ErrorIs(err, ErrNotFound)

	// deleting a missing key is not an error
	s.NoError(s.store.Delete(ctx, "k"))
}

func (s *StoreTestSuite) TestJSONHelpers() {
	ctx := context.Background()
	in := map[string]int{"a": 1, "b": 2}
	s.Require().NoError(SetJSON(ctx, s.store, "m", in))

	var out map[string]int
	s.Require().NoError(GetJSON(ctx, s.store, "m", &out))
	s.Equal(in, out)

	s.Require().NoError(s.store.Set(ctx, "broken", "{not json"))
	s.Error(GetJSON(ctx, s.store, "broken", &out))

	s.Require().NoError(s.store.Set(ctx, "mistyped", `{"a":1,"b":"two","c":3}`))
	out = map[string]int{"z": 9}
	s.Error(GetJSON(ctx, s.store, "mistyped", &out))
	s.Nil(out)

	var entries []struct{ N int }
	s.Require().NoError(s.store.Set(ctx, "list", `[{"N":1},{"N":"x"}]`))
	s.Error(GetJSON(ctx, s.store, "list", &entries))
	s.Nil(entries)
	s.ErrorIs(GetJSON(ctx, s.store, "missing", &out), ErrNotFound)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, KeyLocalCart, `[]`))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.Get(ctx, KeyLocalCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
	assert.Equal(t, path, st.Path())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: "bolt"})
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	st, err := Open(context.Background(), &config.Config{
		StorageDriver: DriverSQLite,
		StoragePath:   filepath.Join(t.TempDir(), "d.db"),
	})
	require.NoError(t, err)
	defer st.Close()
	assert.IsType(t, &SQLiteStore{}, st)
}
