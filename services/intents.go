// services/intents.go
package services

import (
	"fmt"

	"mission-console/models"
)

// Intent is a user or system action the console can apply.
type Intent interface {
	intentName() string
}

type CompleteMission struct{ MissionID int }
type Login struct{}
type Logout struct{}
type ShowAuth struct{ Visible bool }
type SelectTab struct{ Tab Tab }
type PushScreen struct{ Frame Frame }
type PopScreen struct{}
type PopToRoot struct{}
type UpdateProfile struct{ Patch models.ProfilePatch }
type RefreshMesh struct{}

func (CompleteMission) intentName() string { return "complete-mission" }
func (Login) intentName() string           { return "login" }
func (Logout) intentName() string          { return "logout" }
func (ShowAuth) intentName() string        { return "show-auth" }
func (SelectTab) intentName() string       { return "select-tab" }
func (PushScreen) intentName() string      { return "push-screen" }
func (PopScreen) intentName() string       { return "pop-screen" }
func (PopToRoot) intentName() string       { return "pop-to-root" }
func (UpdateProfile) intentName() string   { return "update-profile" }
func (RefreshMesh) intentName() string     { return "refresh-mesh" }

// EffectKind names a side effect the console shell performs after a transition.
type EffectKind string

const (
	EffectPersistProgress EffectKind = "persist-progress"
	EffectPersistProfile  EffectKind = "persist-profile"
	EffectPersistSession  EffectKind = "persist-session"
	EffectNotifyXP        EffectKind = "notify-xp"
	EffectBroadcast       EffectKind = "broadcast"
	EffectReconcile       EffectKind = "reconcile"
	EffectForcePush       EffectKind = "force-push"
	EffectPull            EffectKind = "pull"
	EffectStartSync       EffectKind = "start-sync"
	EffectStopSync        EffectKind = "stop-sync"
)

// Effect describes one side effect. Only the fields relevant to Kind are set.
type Effect struct {
	Kind      EffectKind           `json:"kind"`
	MissionID int                  `json:"mission_id,omitempty"`
	XP        int64                `json:"xp,omitempty"`
	Text      string               `json:"text,omitempty"`
	Patch     *models.ProfilePatch `json:"patch,omitempty"`
	Session   bool                 `json:"session,omitempty"`
}

// AppState is everything a transition may read or change.
type AppState struct {
	Nav       NavState
	Completed []int
	Profile   models.Profile
}

func (s AppState) completed(id int) bool {
	for _, c := range s.Completed {
		if c == id {
			return true
		}
	}
	return false
}

// SectorSecuredText is the activity line broadcast when a mission is completed.
func SectorSecuredText(m models.Mission) string {
	return fmt.Sprintf("Sector secured: %s", m.Title)
}

// Reduce applies intent to state and lists the side effects to run, in order.
// It performs no I/O. Persistence effects always precede network effects.
func Reduce(state AppState, intent Intent, catalog *Catalog) (AppState, []Effect, error) {
	next := state
	next.Completed = append([]int{}, state.Completed...)

	switch in := intent.(type) {
	case CompleteMission:
		if !state.Nav.LoggedIn {
			return state, nil, ErrNotLoggedIn
		}
		m, ok := catalog.Mission(in.MissionID)
		if !ok {
			return state, nil, fmt.Errorf("%w %d", ErrUnknownMission, in.MissionID)
		}
		if state.completed(m.ID) {
			return state, nil, nil
		}
		next.Completed = append(next.Completed, m.ID)
		gained := ComputeXP([]int{m.ID}, catalog, state.Nav.BonusActive())
		return next, []Effect{
			{Kind: EffectPersistProgress, MissionID: m.ID},
			{Kind: EffectNotifyXP, MissionID: m.ID, XP: gained},
			{Kind: EffectBroadcast, Text: SectorSecuredText(m)},
			{Kind: EffectReconcile},
		}, nil

	case Login:
		if state.Nav.LoggedIn {
			return state, nil, nil
		}
		next.Nav = state.Nav.Login()
		return next, []Effect{
			{Kind: EffectPersistSession, Session: true},
			{Kind: EffectStartSync},
			{Kind: EffectForcePush},
		}, nil

	case Logout:
		if !state.Nav.LoggedIn {
			return state, nil, nil
		}
		next.Nav = state.Nav.Logout()
		return next, []Effect{
			{Kind: EffectPersistSession, Session: false},
			{Kind: EffectStopSync},
		}, nil

	case ShowAuth:
		nav, err := state.Nav.ShowAuth(in.Visible)
		if err != nil {
			return state, nil, err
		}
		next.Nav = nav
		return next, nil, nil

	case SelectTab:
		nav, err := state.Nav.SelectTab(in.Tab)
		if err != nil {
			return state, nil, err
		}
		next.Nav = nav
		return next, refreshBoard(state.Nav, nav), nil

	case PushScreen:
		nav, err := state.Nav.Push(in.Frame)
		if err != nil {
			return state, nil, err
		}
		next.Nav = nav
		return next, refreshBoard(state.Nav, nav), nil

	case PopScreen:
		nav, err := state.Nav.Pop()
		if err != nil {
			return state, nil, err
		}
		next.Nav = nav
		return next, nil, nil

	case PopToRoot:
		if !state.Nav.LoggedIn {
			return state, nil, ErrNotLoggedIn
		}
		next.Nav = state.Nav.PopToRoot()
		return next, nil, nil

	case UpdateProfile:
		if in.Patch.Empty() {
			return state, nil, nil
		}
		patch := in.Patch
		next.Profile = patch.Apply(state.Profile)
		effects := []Effect{{Kind: EffectPersistProfile, Patch: &patch}}
		if state.Nav.LoggedIn {
			effects = append(effects, Effect{Kind: EffectForcePush})
		}
		return next, effects, nil

	case RefreshMesh:
		if !state.Nav.LoggedIn {
			return state, nil, ErrNotLoggedIn
		}
		return next, []Effect{{Kind: EffectForcePush}}, nil
	}

	return state, nil, fmt.Errorf("unsupported intent %T", intent)
}

// refreshBoard pulls the mesh when the community screen comes into view.
func refreshBoard(prev, next NavState) []Effect {
	if next.BonusActive() && !prev.BonusActive() {
		return []Effect{{Kind: EffectPull}}
	}
	return nil
}
