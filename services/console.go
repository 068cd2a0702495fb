// services/console.go
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mission-console/models"

	"go.uber.org/zap"
)

// SyncScheduler runs the periodic mesh reconciliation while a session is active.
type SyncScheduler interface {
	Start() error
	Stop() error
}

// Console is the session context: it owns the progress store, the navigation
// state and the mesh synchronizer, and applies intents one at a time.
type Console struct {
	catalog *Catalog
	store   *ProgressStore
	mesh    *MeshSynchronizer
	events  *EventHub
	log     *zap.Logger

	ambient            AmbientGenerator
	ambientCompetitors int

	mu          sync.Mutex
	nav         NavState
	scheduler   SyncScheduler
	ambientFeed []models.Signal
}

// ConsoleOptions configures optional collaborators.
type ConsoleOptions struct {
	Ambient            AmbientGenerator
	AmbientCompetitors int
	Events             *EventHub
}

// NewConsole wires a console around a loaded progress store and a mesh backend.
func NewConsole(catalog *Catalog, store *ProgressStore, meshStore MeshStore, log *zap.Logger, opts ConsoleOptions) *Console {
	c := &Console{
		catalog:            catalog,
		store:              store,
		events:             opts.Events,
		log:                log,
		ambient:            opts.Ambient,
		ambientCompetitors: opts.AmbientCompetitors,
		nav:                LoggedOutState(),
	}
	if c.events == nil {
		c.events = NewEventHub(16)
	}
	c.mesh = NewMeshSynchronizer(meshStore, c, log)
	return c
}

func (c *Console) Catalog() *Catalog       { return c.catalog }
func (c *Console) Store() *ProgressStore   { return c.store }
func (c *Console) Mesh() *MeshSynchronizer { return c.mesh }
func (c *Console) Events() *EventHub       { return c.events }

func (c *Console) SetScheduler(s SyncScheduler) {
	c.mu.Lock()
	c.scheduler = s
	c.mu.Unlock()
}

// LocalCommander reports the profile and the un-bonused XP that gets pushed.
func (c *Console) LocalCommander() (models.Profile, int64) {
	return c.store.Profile(), ComputeXP(c.store.Completed(), c.catalog, false)
}

// Resume restores a session persisted by a previous run.
func (c *Console) Resume(ctx context.Context) {
	if !c.store.SessionActive() {
		return
	}
	c.mu.Lock()
	c.nav = c.nav.Login()
	c.mu.Unlock()

	c.log.Info("🔁 [CONSOLE] resuming persisted session", zap.String("profile", c.store.Profile().ID))
	c.runNetworkEffects(ctx, []Effect{{Kind: EffectStartSync}, {Kind: EffectForcePush}})
}

// Dispatch applies one intent. Local persistence happens under the console lock
// and always completes before any network effect starts.
func (c *Console) Dispatch(ctx context.Context, intent Intent) (View, error) {
	view, _, err := c.dispatch(ctx, intent)
	return view, err
}

// CompleteMission dispatches a completion and reports whether this call
// recorded it. Concurrent callers for the same mission see exactly one true.
func (c *Console) CompleteMission(ctx context.Context, missionID int) (View, bool, error) {
	view, effects, err := c.dispatch(ctx, CompleteMission{MissionID: missionID})
	if err != nil {
		return view, false, err
	}
	for _, e := range effects {
		if e.Kind == EffectPersistProgress {
			return view, true, nil
		}
	}
	return view, false, nil
}

// dispatch returns the effects of the applied transition along with the view.
func (c *Console) dispatch(ctx context.Context, intent Intent) (View, []Effect, error) {
	c.mu.Lock()
	state := AppState{Nav: c.nav, Completed: c.store.Completed(), Profile: c.store.Profile()}
	next, effects, err := Reduce(state, intent, c.catalog)
	if err != nil {
		c.mu.Unlock()
		return c.View(), nil, err
	}

	var network []Effect
	for _, e := range effects {
		if err := c.persistLocked(e); err != nil {
			c.mu.Unlock()
			c.log.Error("❌ [CONSOLE] failed to persist", zap.String("intent", intent.intentName()), zap.Error(err))
			return c.View(), nil, err
		}
		if !isPersistEffect(e.Kind) {
			network = append(network, e)
		}
	}
	c.nav = next.Nav
	c.mu.Unlock()

	c.log.Debug("[CONSOLE] intent applied",
		zap.String("intent", intent.intentName()), zap.Int("effects", len(effects)))

	// the request may go away; the effects still belong to the applied transition
	c.runNetworkEffects(context.WithoutCancel(ctx), network)
	return c.View(), effects, nil
}

func isPersistEffect(k EffectKind) bool {
	return k == EffectPersistProgress || k == EffectPersistProfile || k == EffectPersistSession
}

func (c *Console) persistLocked(e Effect) error {
	switch e.Kind {
	case EffectPersistProgress:
		if _, err := c.store.RecordCompletion(e.MissionID); err != nil {
			return fmt.Errorf("persist progress: %w", err)
		}
	case EffectPersistProfile:
		if _, err := c.store.UpdateProfile(*e.Patch); err != nil {
			return fmt.Errorf("persist profile: %w", err)
		}
	case EffectPersistSession:
		if err := c.store.SetSession(e.Session); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

func (c *Console) runNetworkEffects(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		switch e.Kind {
		case EffectNotifyXP:
			c.events.Publish("xp", map[string]any{
				"mission_id": e.MissionID,
				"gained":     e.XP,
				"progress":   c.Progress(),
			})
			after := c.store.Completed()
			for _, b := range NewBadges(without(after, e.MissionID), after, c.catalog) {
				c.log.Info("🎖️ [CONSOLE] badge earned", zap.String("badge", b.Code))
				c.events.Publish("badge", b)
			}
		case EffectBroadcast:
			m := c.mesh.Broadcast(ctx, e.Text)
			if n := len(m.Signals); n > 0 {
				c.events.Publish("signal", m.Signals[n-1])
			}
		case EffectReconcile:
			c.mesh.ReconcileAndMaybePush(ctx, false)
		case EffectForcePush:
			c.mesh.ReconcileAndMaybePush(ctx, true)
		case EffectPull:
			c.mesh.Pull(ctx)
		case EffectStartSync, EffectStopSync:
			c.mu.Lock()
			sched := c.scheduler
			c.mu.Unlock()
			if sched == nil {
				continue
			}
			var err error
			if e.Kind == EffectStartSync {
				err = sched.Start()
			} else {
				err = sched.Stop()
			}
			if err != nil {
				c.log.Warn("⚠️ [CONSOLE] scheduler", zap.String("effect", string(e.Kind)), zap.Error(err))
			}
		}
	}
}

func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Badges lists the insignia the local progress has earned.
func (c *Console) Badges() []models.Badge {
	return EarnedBadges(c.store.Completed(), c.catalog)
}

// SyncCycle is one scheduled reconciliation.
func (c *Console) SyncCycle(ctx context.Context) {
	if !c.LoggedIn() {
		return
	}
	c.mesh.ReconcileAndMaybePush(ctx, false)
}

func (c *Console) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.LoggedIn
}

func (c *Console) Nav() NavState {
	c.mu.Lock()
	defer c.mu.Unlock()
	nav := c.nav
	nav.Stack = c.nav.cloneStack()
	return nav
}

// Progress is the derived progression with the bonus of the current screen.
func (c *Console) Progress() Progression {
	bonus := c.Nav().BonusActive()
	return Progress(c.store.Completed(), c.catalog, bonus)
}

// View is the console state a client renders.
type View struct {
	Nav      NavState       `json:"nav"`
	Current  Frame          `json:"current"`
	Profile  models.Profile `json:"profile"`
	Progress Progression    `json:"progress"`
	Syncing  bool           `json:"syncing"`
}

func (c *Console) View() View {
	nav := c.Nav()
	return View{
		Nav:      nav,
		Current:  nav.Current(),
		Profile:  c.store.Profile(),
		Progress: Progress(c.store.Completed(), c.catalog, nav.BonusActive()),
		Syncing:  c.mesh.Syncing(),
	}
}

// LeaderboardEntry is one ranked row of the community view.
type LeaderboardEntry struct {
	models.Commander
	Self bool `json:"self"`
}

// Leaderboard merges the last mesh snapshot, the local commander and any
// ambient competitors into one ranked list. Nothing here is pushed remotely.
func (c *Console) Leaderboard() []LeaderboardEntry {
	snap := c.mesh.Snapshot()
	profile, xp := c.LocalCommander()

	cs := snap.Commanders
	if idx := snap.FindCommander(profile.ID); idx >= 0 {
		if xp > cs[idx].XP {
			cs[idx].XP = xp
		}
	} else {
		cs = append(cs, models.Commander{
			Username: profile.Username, XP: xp, Avatar: profile.Avatar,
			ID: profile.ID, LastActive: time.Now().UnixMilli(),
		})
	}
	if c.ambient != nil && c.ambientCompetitors > 0 {
		merged := &models.Mesh{Commanders: cs}
		self := cs[merged.FindCommander(profile.ID)]
		cs = append(cs, c.ambient.Competitors(self, c.ambientCompetitors)...)
	}
	RankCommanders(cs)

	out := make([]LeaderboardEntry, len(cs))
	for i, cmd := range cs {
		out[i] = LeaderboardEntry{Commander: cmd, Self: cmd.ID == profile.ID}
	}
	return out
}

// AddAmbientRecruit appends one synthetic recruit to the local ticker feed.
func (c *Console) AddAmbientRecruit(now time.Time) {
	if c.ambient == nil {
		return
	}
	sig := c.ambient.Recruit(now)
	c.mu.Lock()
	c.ambientFeed = AppendSignal(c.ambientFeed, sig)
	c.mu.Unlock()
	c.events.Publish("signal", sig)
}

// Signals is the ticker: mesh signals and ambient recruits, oldest first,
// capped at MaxSignals.
func (c *Console) Signals() []models.Signal {
	snap := c.mesh.Snapshot()
	c.mu.Lock()
	feed := append(snap.Signals, c.ambientFeed...)
	c.mu.Unlock()

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Timestamp < feed[j].Timestamp })
	if len(feed) > models.MaxSignals {
		feed = feed[len(feed)-models.MaxSignals:]
	}
	return feed
}
