package store

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	bdg, err := OpenBadger(BadgerConfig{Path: filepath.Join(dir, "badger"), Logger: logrus.New()})
	require.NoError(t, err)
	sq, err := OpenSQLite(filepath.Join(dir, "state.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		DriverMemory: NewMemory(),
		DriverBadger: bdg,
		DriverSQLite: sq,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStores_RoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load("epubReaderData")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save("epubReaderData", []byte(`{"books":[]}`)))
			got, err := s.Load("epubReaderData")
			require.NoError(t, err)
			assert.Equal(t, `{"books":[]}`, string(got))

			require.NoError(t, s.Save("epubReaderData", []byte(`{"books":[1]}`)))
			got, err = s.Load("epubReaderData")
			require.NoError(t, err)
			assert.Equal(t, `{"books":[1]}`, string(got), "save replaces the value")
		})
	}
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	s, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestBadger_InMemory(t *testing.T) {
	s, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, s.Save("k", []byte("v")))
	got, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.NoError(t, s.Close())
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Save("k", buf))
	buf[0] = 'x'

	got, err := m.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open("memory", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open("postgres", "", nil)
	assert.Error(t, err)

	s, err = Open("sqlite", filepath.Join(t.TempDir(), "x.db"), nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.Close()
}
