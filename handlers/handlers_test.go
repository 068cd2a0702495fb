package handlers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mission-console/services"
	"mission-console/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *services.Console, *services.MemoryMeshStore) {
	t.Helper()
	db, err := utils.OpenDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	kv, err := services.NewGormKeyValueStore(db)
	require.NoError(t, err)
	store := services.NewProgressStore(kv, zap.NewNop())
	require.NoError(t, store.Load())

	remote := services.NewMemoryMeshStore()
	console := services.NewConsole(services.DefaultCatalog(), store, remote, zap.NewNop(), services.ConsoleOptions{})

	app := fiber.New()
	SetupRoutes(app, console, zap.NewNop())
	return app, console, remote
}

func call(t *testing.T, app *fiber.App, method, target string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	app, _, _ := newTestApp(t)
	code, body := call(t, app, "GET", "/healthz", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCatalogRoutes(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := call(t, app, "GET", "/catalog/worlds", nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["worlds"], 5)

	code, body = call(t, app, "GET", "/catalog/worlds/nebula-of-numbers", nil)
	require.Equal(t, 200, code)
	missions := body["missions"].([]any)
	require.NotEmpty(t, missions)
	first := missions[0].(map[string]any)
	assert.Equal(t, false, first["locked"])

	code, _ = call(t, app, "GET", "/catalog/worlds/1", nil)
	assert.Equal(t, 200, code)

	code, body = call(t, app, "GET", "/catalog/worlds/atlantis", nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "world not found", body["error"])

	code, body = call(t, app, "GET", "/catalog/missions/101", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "Prime Beacon", body["title"])

	code, _ = call(t, app, "GET", "/catalog/missions/abc", nil)
	assert.Equal(t, 400, code)
	code, _ = call(t, app, "GET", "/catalog/missions/999", nil)
	assert.Equal(t, 404, code)
}

func TestSecuredRoutesRequireSession(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := call(t, app, "GET", "/s/progress", nil)
	assert.Equal(t, 401, code)
	assert.Equal(t, "not logged in", body["error"])

	code, _ = call(t, app, "POST", "/s/missions/101/complete", nil)
	assert.Equal(t, 401, code)
}

func TestSessionFlow(t *testing.T) {
	app, console, _ := newTestApp(t)

	code, body := call(t, app, "POST", "/session/auth", map[string]bool{"visible": true})
	require.Equal(t, 200, code)
	assert.Equal(t, "auth", body["current"].(map[string]any)["kind"])

	code, _ = call(t, app, "POST", "/session/login", nil)
	require.Equal(t, 200, code)
	assert.True(t, console.LoggedIn())

	code, _ = call(t, app, "POST", "/session/auth", nil)
	assert.Equal(t, 409, code)

	code, _ = call(t, app, "POST", "/session/logout", nil)
	require.Equal(t, 200, code)
	assert.False(t, console.LoggedIn())
}

func TestCompleteMissionRoute(t *testing.T) {
	app, _, remote := newTestApp(t)
	call(t, app, "POST", "/session/login", nil)

	code, body := call(t, app, "POST", "/s/missions/101/complete", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, false, body["already_completed"])
	assert.EqualValues(t, 650, body["progress"].(map[string]any)["xp"])
	puts := remote.Puts()

	code, body = call(t, app, "POST", "/s/missions/101/complete", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["already_completed"])
	assert.EqualValues(t, 650, body["progress"].(map[string]any)["xp"])
	assert.Equal(t, puts, remote.Puts())

	code, _ = call(t, app, "POST", "/s/missions/4242/complete", nil)
	assert.Equal(t, 404, code)

	code, body = call(t, app, "GET", "/s/progress", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, []any{float64(101)}, body["completed"])

	code, body = call(t, app, "GET", "/s/mesh/leaderboard", nil)
	require.Equal(t, 200, code)
	board := body["leaderboard"].([]any)
	require.Len(t, board, 1)
	assert.Equal(t, true, board[0].(map[string]any)["self"])

	code, body = call(t, app, "GET", "/s/mesh/signals", nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["signals"], 1)

	code, body = call(t, app, "GET", "/s/badges", nil)
	require.Equal(t, 200, code)
	assert.Len(t, body["badges"], 2)
}

func TestProfileRoutes(t *testing.T) {
	app, _, _ := newTestApp(t)
	call(t, app, "POST", "/session/login", nil)

	code, before := call(t, app, "GET", "/s/profile", nil)
	require.Equal(t, 200, code)

	code, after := call(t, app, "PATCH", "/s/profile", map[string]string{"username": "  Nova  "})
	require.Equal(t, 200, code)
	assert.Equal(t, "Nova", after["username"])
	assert.Equal(t, before["id"], after["id"])

	code, _ = call(t, app, "PATCH", "/s/profile", map[string]string{"username": " "})
	assert.Equal(t, 400, code)
	code, _ = call(t, app, "PATCH", "/s/profile", map[string]string{"communityStatus": "emperor"})
	assert.Equal(t, 400, code)
}

func TestNavRoutes(t *testing.T) {
	app, _, _ := newTestApp(t)
	call(t, app, "POST", "/session/login", nil)

	code, body := call(t, app, "POST", "/s/nav/tab", map[string]string{"tab": "worlds"})
	require.Equal(t, 200, code)
	assert.Equal(t, "tab", body["current"].(map[string]any)["kind"])

	frame := services.WorldFrame(1)
	code, body = call(t, app, "POST", "/s/nav/push", frame)
	require.Equal(t, 200, code)
	assert.Equal(t, "world", body["current"].(map[string]any)["kind"])

	code, _ = call(t, app, "POST", "/s/nav/push", map[string]any{"kind": "mission", "params": map[string]string{"mission_id": "x"}})
	assert.Equal(t, 400, code)

	code, _ = call(t, app, "POST", "/s/nav/pop", nil)
	require.Equal(t, 200, code)
	code, _ = call(t, app, "POST", "/s/nav/pop", nil)
	assert.Equal(t, 409, code)

	code, _ = call(t, app, "POST", "/s/nav/tab", map[string]string{"tab": "settings"})
	assert.Equal(t, 400, code)

	code, body = call(t, app, "GET", "/s/nav", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, "worlds", body["nav"].(map[string]any)["active_tab"])
}

func TestMeshRoutes(t *testing.T) {
	app, _, remote := newTestApp(t)
	call(t, app, "POST", "/session/login", nil)
	puts := remote.Puts()

	code, body := call(t, app, "POST", "/s/mesh/refresh", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, puts+1, remote.Puts())
	assert.Len(t, body["mesh"].(map[string]any)["commanders"], 1)

	code, body = call(t, app, "GET", "/s/mesh", nil)
	require.Equal(t, 200, code)
	assert.Equal(t, false, body["syncing"])
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, writeEvent(w, services.Event{Type: "xp", Data: 650, At: 1}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "event: xp\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
	assert.Contains(t, out, `"data":650`)
}

func TestCompleteMissionRouteConcurrentRequests(t *testing.T) {
	app, _, _ := newTestApp(t)
	call(t, app, "POST", "/session/login", nil)

	const requests = 6
	results := make(chan bool, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.Test(httptest.NewRequest("POST", "/s/missions/101/complete", nil), -1)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			var body struct {
				AlreadyCompleted bool `json:"already_completed"`
			}
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body)) {
				results <- body.AlreadyCompleted
			}
		}()
	}
	wg.Wait()
	close(results)

	fresh := 0
	for already := range results {
		if !already {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh, "exactly one request records the completion")
}
