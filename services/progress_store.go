// services/progress_store.go
package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"mission-console/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAvatar is the glyph a freshly synthesized profile starts with.
const DefaultAvatar = "🧑‍🚀"

// ProgressStore is the durable local record of which missions are done and who
// the user is. It is the only writer of those keys.
type ProgressStore struct {
	kv  KeyValueStore
	log *zap.Logger

	// NewUsername and NewID generate the defaults of a fresh profile.
	NewUsername func() string
	NewID       func() string

	mu        sync.Mutex
	completed map[int]struct{}
	order     []int
	profile   models.Profile
	session   bool
	loaded    bool
}

func NewProgressStore(kv KeyValueStore, log *zap.Logger) *ProgressStore {
	return &ProgressStore{
		kv:          kv,
		log:         log,
		NewUsername: RandomUsername,
		NewID:       uuid.NewString,
		completed:   map[int]struct{}{},
	}
}

// RandomUsername returns "Command" followed by three digits.
func RandomUsername() string {
	return fmt.Sprintf("Command%d", 100+rand.Intn(900))
}

// Load restores progress from local storage. Missing or malformed entries are
// treated as absent; a fresh profile is synthesized and saved when none exists.
func (s *ProgressStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed = map[int]struct{}{}
	s.order = nil
	s.session = false

	var ids []int
	if ok, err := s.readJSON(KeyCompletedMissions, &ids); err != nil {
		return err
	} else if ok {
		for _, id := range ids {
			s.insert(id)
		}
	}

	var profile models.Profile
	ok, err := s.readJSON(KeyUserProfile, &profile)
	if err != nil {
		return err
	}
	fresh := !ok || profile.ID == ""
	if fresh {
		profile = models.Profile{
			Username:        s.NewUsername(),
			Avatar:          DefaultAvatar,
			ID:              s.NewID(),
			CommunityStatus: models.CommunityStatusRecruit,
		}
	}
	s.profile = profile

	var session bool
	if _, err := s.readJSON(KeySessionFlag, &session); err != nil {
		return err
	}
	s.session = session

	s.loaded = true
	if fresh {
		s.log.Info("🆕 [STORE] synthesized new profile",
			zap.String("id", profile.ID), zap.String("username", profile.Username))
		return s.saveLocked()
	}
	s.log.Debug("[STORE] progress restored",
		zap.Int("completed", len(s.order)), zap.String("profile", profile.ID))
	return nil
}

// readJSON decodes key into out. A parse failure is logged and reported as absent.
func (s *ProgressStore) readJSON(key string, out any) (bool, error) {
	raw, found, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn("⚠️ [STORE] ignoring malformed entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Save writes the completed set, the profile and the session flag.
func (s *ProgressStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *ProgressStore) saveLocked() error {
	if err := s.writeCompletedLocked(); err != nil {
		return err
	}
	if err := s.writeProfileLocked(); err != nil {
		return err
	}
	return s.writeSessionLocked()
}

func (s *ProgressStore) writeCompletedLocked() error {
	ids := s.order
	if ids == nil {
		ids = []int{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.kv.Set(KeyCompletedMissions, string(raw))
}

func (s *ProgressStore) writeProfileLocked() error {
	raw, err := json.Marshal(s.profile)
	if err != nil {
		return err
	}
	return s.kv.Set(KeyUserProfile, string(raw))
}

func (s *ProgressStore) writeSessionLocked() error {
	raw, err := json.Marshal(s.session)
	if err != nil {
		return err
	}
	return s.kv.Set(KeySessionFlag, string(raw))
}

func (s *ProgressStore) insert(id int) bool {
	if _, dup := s.completed[id]; dup {
		return false
	}
	s.completed[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// RecordCompletion adds missionID to the completed set and persists it. It
// reports false, and writes nothing, when the mission was already complete.
func (s *ProgressStore) RecordCompletion(missionID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.insert(missionID) {
		return false, nil
	}
	if err := s.writeCompletedLocked(); err != nil {
		// keep memory and storage in agreement
		delete(s.completed, missionID)
		s.order = s.order[:len(s.order)-1]
		return false, err
	}
	return true, nil
}

// UpdateProfile merges the patch into the profile and persists it.
func (s *ProgressStore) UpdateProfile(patch models.ProfilePatch) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.profile
	s.profile = patch.Apply(s.profile)
	if err := s.writeProfileLocked(); err != nil {
		s.profile = prev
		return prev, err
	}
	return s.profile, nil
}

// SetSession records whether a logged-in session is active.
func (s *ProgressStore) SetSession(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session
	s.session = active
	if err := s.writeSessionLocked(); err != nil {
		s.session = prev
		return err
	}
	return nil
}

// Reset clears every persisted key. The next Load synthesizes a new profile.
func (s *ProgressStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(KeyCompletedMissions, KeyUserProfile, KeySessionFlag); err != nil {
		return err
	}
	s.completed = map[int]struct{}{}
	s.order = nil
	s.profile = models.Profile{}
	s.session = false
	s.loaded = false
	return nil
}

// Completed returns the completed mission ids in the order they were recorded.
func (s *ProgressStore) Completed() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.order...)
}

func (s *ProgressStore) IsCompleted(missionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[missionID]
	return ok
}

// CompletedSet returns a membership view of the completed missions.
func (s *ProgressStore) CompletedSet() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]bool, len(s.completed))
	for id := range s.completed {
		out[id] = true
	}
	return out
}

func (s *ProgressStore) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *ProgressStore) SessionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *ProgressStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}
