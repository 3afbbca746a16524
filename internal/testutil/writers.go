package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
)

// ErrScriptedFailure is returned by ScriptedWriter for planned failures.
var ErrScriptedFailure = errors.New("scripted write failure")

// WriteCall records one invocation of a test writer.
type WriteCall struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
}

// ScriptedWriter fails the first N writes of selected keys and records every call.
// It is safe for concurrent use.
type ScriptedWriter struct {
	mu       sync.Mutex
	failures map[string]int
	calls    []WriteCall
	perKey   map[string]int
	inFlight int
	peak     int

	// MaxDelay adds a random delay up to this value to each write, to shuffle
	// completion order within a round
	MaxDelay time.Duration

	// Store receives successful writes when set
	Store *MemoryWriter
}

// NewScriptedWriter creates a writer where key k fails its first failures[k] writes.
// A negative count fails forever.
func NewScriptedWriter(failures map[string]int) *ScriptedWriter {
	f := make(map[string]int, len(failures))
	for k, v := range failures {
		f[k] = v
	}
	return &ScriptedWriter{
		failures: f,
		perKey:   make(map[string]int),
	}
}

// Write implements blobtypes.Writer.
func (w *ScriptedWriter) Write(ctx context.Context, bucket, key, contentType string, body []byte) error {
	w.mu.Lock()
	w.calls = append(w.calls, WriteCall{Bucket: bucket, Key: key, ContentType: contentType, Body: body})
	w.perKey[key]++
	attempt := w.perKey[key]
	w.inFlight++
	if w.inFlight > w.peak {
		w.peak = w.inFlight
	}
	remaining, scripted := w.failures[key]
	maxDelay := w.MaxDelay
	w.mu.Unlock()

	if maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(maxDelay))))
	}

	w.mu.Lock()
	w.inFlight--
	w.mu.Unlock()

	if scripted && (remaining < 0 || attempt <= remaining) {
		return fmt.Errorf("write %s (attempt %d): %w", key, attempt, ErrScriptedFailure)
	}

	if w.Store != nil {
		return w.Store.Write(ctx, bucket, key, contentType, body)
	}
	return nil
}

// Calls returns a copy of every recorded call.
func (w *ScriptedWriter) Calls() []WriteCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WriteCall, len(w.calls))
	copy(out, w.calls)
	return out
}

// CallCount returns the number of writes issued for key.
func (w *ScriptedWriter) CallCount(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.perKey[key]
}

// TotalCalls returns the number of writes issued for all keys.
func (w *ScriptedWriter) TotalCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.calls)
}

// PeakInFlight returns the highest number of concurrent writes observed.
func (w *ScriptedWriter) PeakInFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.peak
}

// StoredObject is what a MemoryWriter keeps per key.
type StoredObject struct {
	ContentType string
	Body        []byte
}

// MemoryWriter is an in-memory bucket store with overwrite-by-key semantics.
type MemoryWriter struct {
	mu      sync.Mutex
	objects map[string]StoredObject
}

// NewMemoryWriter creates an empty in-memory store.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{objects: make(map[string]StoredObject)}
}

// Write stores a copy of body under bucket/key.
func (m *MemoryWriter) Write(_ context.Context, bucket, key, contentType string, body []byte) error {
	data := make([]byte, len(body))
	copy(data, body)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = StoredObject{ContentType: contentType, Body: data}
	return nil
}

// Get returns the object stored under bucket/key.
func (m *MemoryWriter) Get(bucket, key string) (StoredObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}

// Len returns the number of stored objects.
func (m *MemoryWriter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var (
	_ blobtypes.Writer = (*ScriptedWriter)(nil)
	_ blobtypes.Writer = (*MemoryWriter)(nil)
)
