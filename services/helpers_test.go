package services

import (
	"errors"
	"sync"
	"testing"

	"mission-console/models"
	"mission-console/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustCatalogWithXP(t *testing.T, xp int64) *Catalog {
	t.Helper()
	c, err := NewCatalog(
		[]models.World{{ID: 1, Subject: "test", Title: "Test", Chapters: []models.Chapter{{ID: 1, MissionIDs: []int{1}}}}},
		[]models.Mission{{ID: 1, WorldID: 1, ChapterID: 1, Title: "Only", Difficulty: models.DifficultyCadet, XP: xp}},
	)
	require.NoError(t, err)
	return c
}

// newTestKV opens a private in-memory sqlite database.
func newTestKV(t *testing.T) *GormKeyValueStore {
	t.Helper()
	db, err := utils.OpenDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	kv, err := NewGormKeyValueStore(db)
	require.NoError(t, err)
	return kv
}

func newTestStore(t *testing.T, kv KeyValueStore) *ProgressStore {
	t.Helper()
	s := NewProgressStore(kv, zap.NewNop())
	require.NoError(t, s.Load())
	return s
}

var errBrokenStorage = errors.New("storage offline")

// failingKV fails writes once failWrites is set.
type failingKV struct {
	mu         sync.Mutex
	data       map[string]string
	failWrites bool
}

func newFailingKV() *failingKV {
	return &failingKV{data: map[string]string{}}
}

func (f *failingKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *failingKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errBrokenStorage
	}
	f.data[key] = value
	return nil
}

func (f *failingKV) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *failingKV) setFailing(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}
