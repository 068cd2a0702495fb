package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meshServer is a tiny stand-in for the shared JSON blob endpoint.
type meshServer struct {
	mu     sync.Mutex
	doc    []byte
	status int
	puts   int
}

func (m *meshServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != 0 {
		w.WriteHeader(m.status)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		if m.doc == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(m.doc)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		m.doc = body
		m.puts++
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHTTPMeshStore(t *testing.T) {
	srv := &meshServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	store := NewHTTPMeshStore(ts.URL+"/mesh", &http.Client{Timeout: 5 * time.Second})
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrMeshNotFound)

	require.NoError(t, store.Put(ctx, []byte(`{"commanders":[],"signals":[]}`)))
	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"commanders":[],"signals":[]}`, string(got))

	srv.mu.Lock()
	srv.status = http.StatusBadGateway
	srv.mu.Unlock()

	_, err = store.Get(ctx)
	assert.ErrorContains(t, err, "502")
	assert.Error(t, store.Put(ctx, []byte(`{}`)))
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(doc))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestR2MeshStore(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{}}
	store := NewR2MeshStore(objects, "fleet", "mesh/commanders.json")
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrMeshNotFound)

	require.NoError(t, store.Put(ctx, []byte(`{"commanders":[]}`)))
	assert.Contains(t, objects.objects, "fleet/mesh/commanders.json")

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"commanders":[]}`, string(got))

	objects.err = errors.New("access denied")
	_, err = store.Get(ctx)
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, ErrMeshNotFound)
}

func TestDecodeMesh(t *testing.T) {
	t.Run("empty body is an empty mesh", func(t *testing.T) {
		m, _, err := DecodeMesh([]byte("  "))
		require.NoError(t, err)
		assert.NotNil(t, m.Commanders)
		assert.NotNil(t, m.Signals)
	})

	t.Run("missing arrays are normalized", func(t *testing.T) {
		m, _, err := DecodeMesh([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, m.Commanders)
		assert.Empty(t, m.Signals)
	})

	t.Run("valid document", func(t *testing.T) {
		m, _, err := DecodeMesh([]byte(`{
			"commanders": [{"rank": 1, "username": "Command101", "xp": 650, "avatar": "x", "id": "a", "lastActive": 1700000000000}],
			"signals": [{"id": "s1", "commander": "Command101", "action": "joined", "timestamp": 1700000000000}]
		}`))
		require.NoError(t, err)
		require.Len(t, m.Commanders, 1)
		assert.Equal(t, int64(650), m.Commanders[0].XP)
		assert.Equal(t, "joined", m.Signals[0].Action)
	})

	t.Run("invalid entries are dropped", func(t *testing.T) {
		m, dropped, err := DecodeMesh([]byte(`{"commanders": [
			{"username": "x", "xp": "lots"},
			{"username": "neg", "xp": -5, "id": "n"},
			{"username": "float", "xp": 650.0, "id": "f"},
			{"username": "ok", "xp": 5, "id": "ok"}
		]}`))
		require.NoError(t, err)
		assert.Equal(t, 3, dropped)
		require.Len(t, m.Commanders, 1)
		assert.Equal(t, "ok", m.Commanders[0].ID)
	})

	t.Run("fractional xp is dropped", func(t *testing.T) {
		m, dropped, err := DecodeMesh([]byte(`{"commanders": [{"username": "x", "xp": 650.5, "id": "a"}]}`))
		require.NoError(t, err)
		assert.Equal(t, 1, dropped)
		assert.Empty(t, m.Commanders)
	})

	t.Run("wrong document shape", func(t *testing.T) {
		_, _, err := DecodeMesh([]byte(`{"commanders": "everyone"}`))
		assert.ErrorContains(t, err, "validation")
	})

	t.Run("not json", func(t *testing.T) {
		_, _, err := DecodeMesh([]byte(`<html>`))
		assert.Error(t, err)
	})

	t.Run("synthetic flags are stripped", func(t *testing.T) {
		m, _, err := DecodeMesh([]byte(`{"commanders": [{"id": "a", "username": "x", "xp": 1, "synthetic": true}]}`))
		require.NoError(t, err)
		assert.False(t, m.Commanders[0].Synthetic)
	})
}
