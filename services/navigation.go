// services/navigation.go
package services

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrEmptyStack   = errors.New("navigation stack is empty")
	ErrUnknownTab   = errors.New("unknown tab")
	ErrUnknownFrame = errors.New("unknown screen")
	ErrInvalidFrame = errors.New("invalid screen parameters")
	ErrLoggedIn     = errors.New("already logged in")
)

// Tab is a bottom-bar destination.
type Tab string

const (
	TabHome          Tab = "home"
	TabWorlds        Tab = "worlds"
	TabCommunity     Tab = "community"
	TabOpportunities Tab = "opportunities"
	TabProfile       Tab = "profile"
)

var knownTabs = map[Tab]bool{
	TabHome: true, TabWorlds: true, TabCommunity: true, TabOpportunities: true, TabProfile: true,
}

// FrameKind names a drill-down screen.
type FrameKind string

const (
	FrameTab     FrameKind = "tab"
	FrameWorld   FrameKind = "world"
	FrameChapter FrameKind = "chapter"
	FrameMission FrameKind = "mission"
)

// Frame is one entry of the navigation stack with its parameters.
type Frame struct {
	Kind   FrameKind         `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

func TabFrame(t Tab) Frame { return Frame{Kind: FrameTab, Params: map[string]string{"tab": string(t)}} }
func WorldFrame(id int) Frame {
	return Frame{Kind: FrameWorld, Params: map[string]string{"world_id": strconv.Itoa(id)}}
}
func ChapterFrame(id int) Frame {
	return Frame{Kind: FrameChapter, Params: map[string]string{"chapter_id": strconv.Itoa(id)}}
}
func MissionFrame(id int) Frame {
	return Frame{Kind: FrameMission, Params: map[string]string{"mission_id": strconv.Itoa(id)}}
}

// Validate checks the kind and its required parameter.
func (f Frame) Validate() error {
	required := map[FrameKind]string{
		FrameTab: "tab", FrameWorld: "world_id", FrameChapter: "chapter_id", FrameMission: "mission_id",
	}
	key, ok := required[f.Kind]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownFrame, f.Kind)
	}
	v := f.Params[key]
	if v == "" {
		return fmt.Errorf("%w: %s screen needs %s", ErrInvalidFrame, f.Kind, key)
	}
	if f.Kind == FrameTab {
		if !knownTabs[Tab(v)] {
			return fmt.Errorf("%w %q", ErrUnknownTab, v)
		}
		return nil
	}
	if _, err := strconv.Atoi(v); err != nil {
		return fmt.Errorf("%w: %s screen: %s must be numeric", ErrInvalidFrame, f.Kind, key)
	}
	return nil
}

func (f Frame) clone() Frame {
	if f.Params == nil {
		return f
	}
	params := make(map[string]string, len(f.Params))
	for k, v := range f.Params {
		params[k] = v
	}
	return Frame{Kind: f.Kind, Params: params}
}

// NavState is either logged out (landing or auth screen) or logged in with an
// active tab and a drill-down stack layered over it.
type NavState struct {
	LoggedIn    bool    `json:"logged_in"`
	ShowingAuth bool    `json:"showing_auth"`
	ActiveTab   Tab     `json:"active_tab,omitempty"`
	Stack       []Frame `json:"stack"`
}

// LoggedOutState is the landing screen.
func LoggedOutState() NavState {
	return NavState{Stack: []Frame{}}
}

func (s NavState) cloneStack() []Frame {
	out := make([]Frame, len(s.Stack))
	for i, f := range s.Stack {
		out[i] = f.clone()
	}
	return out
}

// Login moves to the logged-in home tab with an empty stack.
func (s NavState) Login() NavState {
	return NavState{LoggedIn: true, ActiveTab: TabHome, Stack: []Frame{}}
}

// Logout returns to the landing screen and clears the stack.
func (s NavState) Logout() NavState {
	return LoggedOutState()
}

// ShowAuth toggles the auth screen while logged out.
func (s NavState) ShowAuth(visible bool) (NavState, error) {
	if s.LoggedIn {
		return s, ErrLoggedIn
	}
	s.ShowingAuth = visible
	s.Stack = []Frame{}
	return s, nil
}

// SelectTab clears the stack and switches the active tab.
func (s NavState) SelectTab(t Tab) (NavState, error) {
	if !s.LoggedIn {
		return s, ErrNotLoggedIn
	}
	if !knownTabs[t] {
		return s, fmt.Errorf("%w %q", ErrUnknownTab, t)
	}
	return NavState{LoggedIn: true, ActiveTab: t, Stack: []Frame{}}, nil
}

// Push layers a screen over the current one.
func (s NavState) Push(f Frame) (NavState, error) {
	if !s.LoggedIn {
		return s, ErrNotLoggedIn
	}
	if err := f.Validate(); err != nil {
		return s, err
	}
	stack := append(s.cloneStack(), f.clone())
	s.Stack = stack
	return s, nil
}

// Pop removes the top screen.
func (s NavState) Pop() (NavState, error) {
	if !s.LoggedIn {
		return s, ErrNotLoggedIn
	}
	if len(s.Stack) == 0 {
		return s, ErrEmptyStack
	}
	stack := s.cloneStack()
	s.Stack = stack[:len(stack)-1]
	return s, nil
}

// PopToRoot clears the stack but keeps the active tab.
func (s NavState) PopToRoot() NavState {
	s.Stack = []Frame{}
	return s
}

// Current is the screen being presented: the top of the stack, or the active
// tab when the stack is empty. Logged out it is the landing or auth screen.
func (s NavState) Current() Frame {
	if !s.LoggedIn {
		if s.ShowingAuth {
			return Frame{Kind: "auth"}
		}
		return Frame{Kind: "landing"}
	}
	if n := len(s.Stack); n > 0 {
		return s.Stack[n-1].clone()
	}
	return TabFrame(s.ActiveTab)
}

// BonusActive reports whether the community screen is being presented.
func (s NavState) BonusActive() bool {
	cur := s.Current()
	return cur.Kind == FrameTab && cur.Params["tab"] == string(TabCommunity)
}
