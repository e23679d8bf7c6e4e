package score

import (
	"context"
	"sync"
)

type repoMock struct {
	mu         sync.Mutex
	counts     Counts
	countErrs  map[Category]error
	stored     int
	getErr     error
	setErr     error
	countCalls int
	setCalls   int
}

func newRepoMock(counts Counts) *repoMock {
	return &repoMock{counts: counts, countErrs: make(map[Category]error)}
}

func (m *repoMock) CountQualifying(_ context.Context, cat Category, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if err := m.countErrs[cat]; err != nil {
		return 0, err
	}
	return m.counts[cat], nil
}

func (m *repoMock) GetStoredScore(context.Context, string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.stored, nil
}

func (m *repoMock) SetStoredScore(_ context.Context, _ string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.stored = total
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type listenerMock struct {
	mu      sync.Mutex
	updates map[string]int
}

func (l *listenerMock) ScoreUpdated(_ context.Context, userID string, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updates == nil {
		l.updates = make(map[string]int)
	}
	l.updates[userID] = total
}
