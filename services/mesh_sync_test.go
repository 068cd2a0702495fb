package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"mission-console/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedSource(id, name string, xp int64) CommanderSource {
	return CommanderSourceFunc(func() (models.Profile, int64) {
		return models.Profile{ID: id, Username: name, Avatar: "🚀"}, xp
	})
}

func seedMesh(t *testing.T, store MeshStore, m *models.Mesh) {
	t.Helper()
	doc, err := EncodeMesh(m)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), doc))
}

func readMesh(t *testing.T, store MeshStore) *models.Mesh {
	t.Helper()
	raw, err := store.Get(context.Background())
	require.NoError(t, err)
	m, _, err := DecodeMesh(raw)
	require.NoError(t, err)
	return m
}

func newTestSync(store MeshStore, source CommanderSource) *MeshSynchronizer {
	s := NewMeshSynchronizer(store, source, zap.NewNop())
	s.Now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return s
}

func TestReconcileAppendsMissingCommander(t *testing.T) {
	store := NewMemoryMeshStore()
	seedMesh(t, store, &models.Mesh{Commanders: []models.Commander{
		{Username: "Vega", XP: 3000, ID: "other-1"},
	}})
	before := store.Puts()

	s := newTestSync(store, fixedSource("me", "Command101", 650))
	got := s.ReconcileAndMaybePush(context.Background(), false)

	assert.Equal(t, before+1, store.Puts())
	remote := readMesh(t, store)
	require.Len(t, remote.Commanders, 2)
	idx := remote.FindCommander("me")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, int64(650), remote.Commanders[idx].XP)
	assert.Equal(t, int64(1_700_000_000_000), remote.Commanders[idx].LastActive)
	assert.Equal(t, 2, remote.Commanders[idx].Rank)
	assert.Equal(t, remote, got)
}

func TestReconcileReplacesLowerXPEntry(t *testing.T) {
	store := NewMemoryMeshStore()
	seedMesh(t, store, &models.Mesh{Commanders: []models.Commander{
		{Username: "Old Name", XP: 100, ID: "me"},
		{Username: "Vega", XP: 3000, ID: "other-1"},
	}})

	s := newTestSync(store, fixedSource("me", "Command101", 1450))
	s.ReconcileAndMaybePush(context.Background(), false)

	remote := readMesh(t, store)
	require.Len(t, remote.Commanders, 2)
	me := remote.Commanders[remote.FindCommander("me")]
	assert.Equal(t, int64(1450), me.XP)
	assert.Equal(t, "Command101", me.Username)
}

func TestReconcileSkipsWriteWhenRemoteIsAhead(t *testing.T) {
	for _, remoteXP := range []int64{650, 9000} {
		t.Run(fmt.Sprintf("remote xp %d", remoteXP), func(t *testing.T) {
			store := NewMemoryMeshStore()
			seedMesh(t, store, &models.Mesh{Commanders: []models.Commander{{Username: "me", XP: remoteXP, ID: "me"}}})
			before := store.Puts()

			s := newTestSync(store, fixedSource("me", "Command101", 650))
			got := s.ReconcileAndMaybePush(context.Background(), false)

			assert.Equal(t, before, store.Puts())
			assert.Equal(t, remoteXP, got.Commanders[0].XP)
		})
	}
}

func TestReconcileForcePush(t *testing.T) {
	store := NewMemoryMeshStore()
	seedMesh(t, store, &models.Mesh{Commanders: []models.Commander{{Username: "old", XP: 9000, ID: "me"}}})
	before := store.Puts()

	s := newTestSync(store, fixedSource("me", "Renamed", 650))
	s.ReconcileAndMaybePush(context.Background(), true)

	assert.Equal(t, before+1, store.Puts())
	remote := readMesh(t, store)
	require.Len(t, remote.Commanders, 1)
	assert.Equal(t, "Renamed", remote.Commanders[0].Username)
	assert.Equal(t, int64(650), remote.Commanders[0].XP)
}

func TestReconcileCreatesMissingDocument(t *testing.T) {
	store := NewMemoryMeshStore()
	s := newTestSync(store, fixedSource("me", "Command101", 0))

	got := s.ReconcileAndMaybePush(context.Background(), false)

	assert.Equal(t, 1, store.Puts())
	require.Len(t, got.Commanders, 1)
	assert.Equal(t, 1, got.Commanders[0].Rank)
}

// brokenStore fails every call.
type brokenStore struct{ gets, puts int }

func (b *brokenStore) Get(ctx context.Context) ([]byte, error) {
	b.gets++
	return nil, fmt.Errorf("dial tcp: connection refused")
}

func (b *brokenStore) Put(ctx context.Context, doc []byte) error {
	b.puts++
	return fmt.Errorf("dial tcp: connection refused")
}

func TestPullFailureFallsBackToEmpty(t *testing.T) {
	store := &brokenStore{}
	s := newTestSync(store, fixedSource("me", "Command101", 650))

	m := s.Pull(context.Background())
	assert.Equal(t, models.EmptyMesh(), m)

	got := s.ReconcileAndMaybePush(context.Background(), true)
	assert.Equal(t, models.EmptyMesh(), got)
	assert.Equal(t, 0, store.puts, "no write without a known remote state")
	assert.False(t, s.Syncing())
}

func TestPullFailureKeepsLastSnapshotForDisplay(t *testing.T) {
	mem := NewMemoryMeshStore()
	seedMesh(t, mem, &models.Mesh{Commanders: []models.Commander{{Username: "Vega", XP: 10, ID: "v"}}})

	toggle := &toggleStore{MeshStore: mem}
	s := newTestSync(toggle, fixedSource("me", "Command101", 0))
	s.Pull(context.Background())
	require.Len(t, s.Snapshot().Commanders, 1)

	toggle.down = true
	assert.Empty(t, s.Pull(context.Background()).Commanders)
	assert.Len(t, s.Snapshot().Commanders, 1)
}

type toggleStore struct {
	MeshStore
	down bool
}

func (t *toggleStore) Get(ctx context.Context) ([]byte, error) {
	if t.down {
		return nil, fmt.Errorf("timeout")
	}
	return t.MeshStore.Get(ctx)
}

func TestBroadcastCapsSignals(t *testing.T) {
	store := NewMemoryMeshStore()
	seed := &models.Mesh{Commanders: []models.Commander{}}
	for i := 0; i < models.MaxSignals; i++ {
		seed.Signals = append(seed.Signals, models.Signal{
			ID: fmt.Sprintf("s%02d", i), Commander: "Vega", Action: "tick", Timestamp: int64(i),
		})
	}
	seedMesh(t, store, seed)

	s := newTestSync(store, fixedSource("me", "Command101", 0))
	s.NewID = func() string { return "newest" }
	s.Broadcast(context.Background(), "Sector secured: Prime Beacon")

	remote := readMesh(t, store)
	require.Len(t, remote.Signals, models.MaxSignals)
	assert.Equal(t, "s01", remote.Signals[0].ID, "oldest dropped")
	last := remote.Signals[len(remote.Signals)-1]
	assert.Equal(t, "newest", last.ID)
	assert.Equal(t, "Command101", last.Commander)
	assert.Equal(t, "Sector secured: Prime Beacon", last.Action)
	assert.Equal(t, int64(1_700_000_000_000), last.Timestamp)
}

func TestAppendSignalDoesNotAliasInput(t *testing.T) {
	in := make([]models.Signal, 0, 4)
	in = append(in, models.Signal{ID: "a"})
	out := AppendSignal(in, models.Signal{ID: "b"})
	out[0].ID = "changed"
	assert.Equal(t, "a", in[0].ID)
}

func TestRankCommanders(t *testing.T) {
	cs := []models.Commander{
		{ID: "c", XP: 10, LastActive: 1},
		{ID: "a", XP: 50},
		{ID: "b", XP: 10, LastActive: 5},
		{ID: "d", XP: 10, LastActive: 1},
	}
	RankCommanders(cs)

	var order []string
	for i, c := range cs {
		order = append(order, c.ID)
		assert.Equal(t, i+1, c.Rank)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

// barrierStore holds every Get until n of them have arrived, so that several
// clients read the same version before any of them writes.
type barrierStore struct {
	*MemoryMeshStore
	wg sync.WaitGroup
}

func newBarrierStore(n int) *barrierStore {
	b := &barrierStore{MemoryMeshStore: NewMemoryMeshStore()}
	b.wg.Add(n)
	return b
}

func (b *barrierStore) Get(ctx context.Context) ([]byte, error) {
	doc, err := b.MemoryMeshStore.Get(ctx)
	b.wg.Done()
	b.wg.Wait()
	return doc, err
}

func TestConcurrentPushesLoseUpdates(t *testing.T) {
	store := newBarrierStore(2)
	seedMesh(t, store.MemoryMeshStore, &models.Mesh{
		Commanders: []models.Commander{
			{Username: "Vega", XP: 4000, ID: "vega"},
			{Username: "Rigel", XP: 2000, ID: "rigel"},
		},
		Signals: []models.Signal{},
	})
	before := store.Puts()

	alice := newTestSync(store, fixedSource("alice", "Alice", 650))
	bob := newTestSync(store, fixedSource("bob", "Bob", 800))

	var wg sync.WaitGroup
	for _, s := range []*MeshSynchronizer{alice, bob} {
		wg.Add(1)
		go func(s *MeshSynchronizer) {
			defer wg.Done()
			s.ReconcileAndMaybePush(context.Background(), false)
		}(s)
	}
	wg.Wait()

	assert.Equal(t, before+2, store.Puts(), "both clients wrote")

	raw, err := store.MemoryMeshStore.Get(context.Background())
	require.NoError(t, err)
	var remote models.Mesh
	require.NoError(t, json.Unmarshal(raw, &remote))

	// the later write replaced the earlier one wholesale
	require.Len(t, remote.Commanders, 3)
	hasAlice := remote.FindCommander("alice") >= 0
	hasBob := remote.FindCommander("bob") >= 0
	assert.True(t, hasAlice != hasBob, "exactly one of the concurrent pushes survives")
	assert.GreaterOrEqual(t, remote.FindCommander("vega"), 0)
	assert.GreaterOrEqual(t, remote.FindCommander("rigel"), 0)
}

func TestForcedReconcileRepairsDocumentWithInvalidEntry(t *testing.T) {
	store := NewMemoryMeshStore()
	require.NoError(t, store.Put(context.Background(), []byte(`{
		"commanders": [
			{"username": "Old", "xp": 10, "id": ""},
			{"username": "Vega", "xp": 3000, "id": "vega"},
			{"username": "Float", "xp": 650.5, "id": "float"}
		],
		"signals": [
			{"id": "s1", "commander": "Vega", "action": "joined", "timestamp": 1},
			{"id": "s2", "commander": "Vega"}
		]
	}`)))
	before := store.Puts()

	s := newTestSync(store, fixedSource("me", "Command101", 650))
	s.ReconcileAndMaybePush(context.Background(), true)
	s.Broadcast(context.Background(), "Sector secured: Prime Beacon")

	assert.Equal(t, before+2, store.Puts())
	remote := readMesh(t, store)
	require.Len(t, remote.Commanders, 2)
	assert.GreaterOrEqual(t, remote.FindCommander("vega"), 0)
	assert.GreaterOrEqual(t, remote.FindCommander("me"), 0)
	assert.Equal(t, -1, remote.FindCommander(""))
	require.Len(t, remote.Signals, 2)
	assert.Equal(t, "s1", remote.Signals[0].ID)
}

func TestUnusableDocumentIsNotOverwritten(t *testing.T) {
	store := NewMemoryMeshStore()
	require.NoError(t, store.Put(context.Background(), []byte(`["not", "a", "mesh"]`)))
	before := store.Puts()

	s := newTestSync(store, fixedSource("me", "Command101", 650))
	s.ReconcileAndMaybePush(context.Background(), true)

	assert.Equal(t, before, store.Puts())
}
