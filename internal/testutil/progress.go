// Package testutil provides test utilities for progress tracking.
package testutil

// MockProgressTracker is a mock implementation of ProgressTracker for testing.
type MockProgressTracker struct {
	UpdateCalled   bool
	CompleteCalled bool
	ErrorCalled    bool
	Uploaded       int64
	Total          int64
	LastError      error
	Updates        []ProgressUpdate
}

// ProgressUpdate represents a single progress update event.
type ProgressUpdate struct {
	Uploaded int64
	Total    int64
}

// Update records a progress update.
func (m *MockProgressTracker) Update(uploaded, total int64) {
	m.UpdateCalled = true
	m.Uploaded = uploaded
	m.Total = total
	m.Updates = append(m.Updates, ProgressUpdate{
		Uploaded: uploaded,
		Total:    total,
	})
}

// Complete marks the operation as complete.
func (m *MockProgressTracker) Complete() {
	m.CompleteCalled = true
}

// Error records an error.
func (m *MockProgressTracker) Error(err error) {
	m.ErrorCalled = true
	m.LastError = err
}
