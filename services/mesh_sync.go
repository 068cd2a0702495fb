// services/mesh_sync.go
package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"mission-console/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommanderSource supplies the local identity and base XP the synchronizer pushes.
type CommanderSource interface {
	LocalCommander() (models.Profile, int64)
}

// CommanderSourceFunc adapts a function to CommanderSource.
type CommanderSourceFunc func() (models.Profile, int64)

func (f CommanderSourceFunc) LocalCommander() (models.Profile, int64) { return f() }

// MeshSynchronizer reconciles local progress with the shared mesh document.
//
// Every write is a whole-document read-modify-write with no conditional put, so
// two clients syncing at the same time can overwrite each other (last writer
// wins). Failures never reach the caller; the synchronizer degrades to the
// last snapshot it saw and the next cycle retries implicitly.
type MeshSynchronizer struct {
	store  MeshStore
	source CommanderSource
	log    *zap.Logger

	Now   func() time.Time
	NewID func() string

	inflight atomic.Int32

	mu   sync.RWMutex
	last *models.Mesh
}

func NewMeshSynchronizer(store MeshStore, source CommanderSource, log *zap.Logger) *MeshSynchronizer {
	return &MeshSynchronizer{
		store:  store,
		source: source,
		log:    log,
		Now:    time.Now,
		NewID:  uuid.NewString,
		last:   models.EmptyMesh(),
	}
}

// Pull fetches the remote document. Any failure yields an empty mesh; the
// last good snapshot is kept for display.
func (s *MeshSynchronizer) Pull(ctx context.Context) *models.Mesh {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	m, ok := s.pull(ctx)
	if ok {
		s.remember(m)
	}
	return m.Clone()
}

// pull reports ok=false when the remote state is unknown (transport failure or
// a body that is not a mesh document at all). A missing document is known to be
// empty, and invalid entries inside a document are dropped.
func (s *MeshSynchronizer) pull(ctx context.Context) (*models.Mesh, bool) {
	raw, err := s.store.Get(ctx)
	if errors.Is(err, ErrMeshNotFound) {
		s.log.Debug("[MESH] no remote document yet")
		return models.EmptyMesh(), true
	}
	if err != nil {
		s.log.Warn("⚠️ [MESH] pull failed, continuing local-only", zap.Error(err))
		return models.EmptyMesh(), false
	}
	m, dropped, err := DecodeMesh(raw)
	if err != nil {
		s.log.Warn("⚠️ [MESH] discarding unusable remote document", zap.Error(err))
		return models.EmptyMesh(), false
	}
	if dropped > 0 {
		// the next write leaves them out
		s.log.Warn("⚠️ [MESH] dropped invalid entries", zap.Int("dropped", dropped))
	}
	return m, true
}

func (s *MeshSynchronizer) push(ctx context.Context, m *models.Mesh) bool {
	doc, err := EncodeMesh(m)
	if err != nil {
		s.log.Error("❌ [MESH] failed to encode document", zap.Error(err))
		return false
	}
	if err := s.store.Put(ctx, doc); err != nil {
		s.log.Warn("⚠️ [MESH] push failed, continuing local-only", zap.Error(err))
		return false
	}
	return true
}

// ReconcileAndMaybePush pulls the mesh and upserts the local commander when it
// is missing, behind on XP, or force is set. It returns the resulting snapshot
// whether or not a write happened. When the pull fails nothing is written, so a
// flaky GET cannot replace the shared board with a one-entry document.
func (s *MeshSynchronizer) ReconcileAndMaybePush(ctx context.Context, force bool) *models.Mesh {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	m, ok := s.pull(ctx)
	if !ok {
		return s.Snapshot()
	}
	profile, xp := s.source.LocalCommander()

	idx := m.FindCommander(profile.ID)
	if idx >= 0 && xp <= m.Commanders[idx].XP && !force {
		s.remember(m)
		return m.Clone()
	}

	me := models.Commander{
		Username:   profile.Username,
		XP:         xp,
		Avatar:     profile.Avatar,
		ID:         profile.ID,
		LastActive: s.Now().UnixMilli(),
	}
	if idx >= 0 {
		m.Commanders[idx] = me
	} else {
		m.Commanders = append(m.Commanders, me)
	}
	RankCommanders(m.Commanders)

	if s.push(ctx, m) {
		s.log.Info("✅ [MESH] commander synced",
			zap.String("id", me.ID), zap.Int64("xp", me.XP), zap.Bool("forced", force))
	}
	s.remember(m)
	return m.Clone()
}

// Broadcast appends an activity signal and keeps only the newest MaxSignals.
func (s *MeshSynchronizer) Broadcast(ctx context.Context, action string) *models.Mesh {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	m, ok := s.pull(ctx)
	if !ok {
		s.log.Warn("⚠️ [MESH] signal dropped", zap.String("action", action))
		return s.Snapshot()
	}
	profile, _ := s.source.LocalCommander()

	m.Signals = AppendSignal(m.Signals, models.Signal{
		ID:        s.NewID(),
		Commander: profile.Username,
		Action:    action,
		Timestamp: s.Now().UnixMilli(),
	})

	if s.push(ctx, m) {
		s.log.Info("📡 [MESH] signal broadcast", zap.String("action", action))
	}
	s.remember(m)
	return m.Clone()
}

// AppendSignal adds sig at the end and drops the oldest entries beyond MaxSignals.
func AppendSignal(signals []models.Signal, sig models.Signal) []models.Signal {
	out := append(append([]models.Signal{}, signals...), sig)
	if len(out) > models.MaxSignals {
		out = out[len(out)-models.MaxSignals:]
	}
	return out
}

// RankCommanders orders commanders by XP (desc), then most recently active,
// then id, and assigns 1-based ranks.
func RankCommanders(cs []models.Commander) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].XP != cs[j].XP {
			return cs[i].XP > cs[j].XP
		}
		if cs[i].LastActive != cs[j].LastActive {
			return cs[i].LastActive > cs[j].LastActive
		}
		return cs[i].ID < cs[j].ID
	})
	for i := range cs {
		cs[i].Rank = i + 1
	}
}

func (s *MeshSynchronizer) remember(m *models.Mesh) {
	s.mu.Lock()
	s.last = m.Clone()
	s.mu.Unlock()
}

// Snapshot returns the most recently obtained mesh.
func (s *MeshSynchronizer) Snapshot() *models.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last.Clone()
}

// Syncing reports whether any pull or push is outstanding.
func (s *MeshSynchronizer) Syncing() bool {
	return s.inflight.Load() > 0
}
