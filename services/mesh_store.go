// services/mesh_store.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"mission-console/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrMeshNotFound means the remote document does not exist yet.
var ErrMeshNotFound = errors.New("mesh document not found")

// MeshStore reads and overwrites the whole shared mesh document. There is no
// partial update and no conflict detection.
type MeshStore interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, doc []byte) error
}

// HTTPMeshStore talks to a single JSON resource supporting GET and PUT.
type HTTPMeshStore struct {
	URL        string
	HTTPClient *http.Client
}

func NewHTTPMeshStore(url string, client *http.Client) *HTTPMeshStore {
	return &HTTPMeshStore{URL: url, HTTPClient: client}
}

func (s *HTTPMeshStore) Get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", s.URL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrMeshNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("mesh endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func (s *HTTPMeshStore) Put(ctx context.Context, doc []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL, bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", s.URL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", s.URL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mesh endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ObjectAPI is the subset of the S3 client the R2 store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2MeshStore keeps the document as a single object in an R2 (S3-compatible) bucket.
type R2MeshStore struct {
	Client ObjectAPI
	Bucket string
	Key    string
}

func NewR2MeshStore(client ObjectAPI, bucket, key string) *R2MeshStore {
	return &R2MeshStore{Client: client, Bucket: bucket, Key: key}
}

func (s *R2MeshStore) Get(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrMeshNotFound
		}
		return nil, fmt.Errorf("failed to read %s from R2: %w", s.Key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *R2MeshStore) Put(ctx context.Context, doc []byte) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to R2: %w", s.Key, err)
	}
	return nil
}

// EncodeMesh serializes the document in its wire shape.
func EncodeMesh(m *models.Mesh) ([]byte, error) {
	out := m.Clone()
	out.Normalize()
	return json.Marshal(out)
}

// MemoryMeshStore keeps the document in process memory. It backs offline mode
// (MESH_BACKEND=none), where the mesh only ever holds this device.
type MemoryMeshStore struct {
	mu   sync.Mutex
	doc  []byte
	puts int
}

func NewMemoryMeshStore() *MemoryMeshStore {
	return &MemoryMeshStore{}
}

func (s *MemoryMeshStore) Get(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrMeshNotFound
	}
	return append([]byte(nil), s.doc...), nil
}

func (s *MemoryMeshStore) Put(ctx context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append([]byte(nil), doc...)
	s.puts++
	return nil
}

// Puts reports how many writes the store has accepted.
func (s *MemoryMeshStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}
