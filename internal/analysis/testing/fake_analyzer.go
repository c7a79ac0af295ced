// Package testing provides test doubles for the analysis package.
package testing

import (
	"context"
	"sync"
	"time"
)

// FakeAnalyzer returns a canned reply and records every report it sees.
type FakeAnalyzer struct {
	mu sync.Mutex

	Reply string
	Err   error
	Delay time.Duration

	Reports []string
}

// NewFakeAnalyzer returns an analyzer that always answers reply.
func NewFakeAnalyzer(reply string) *FakeAnalyzer {
	return &FakeAnalyzer{Reply: reply}
}

// Failing returns an analyzer that always fails with err.
func Failing(err error) *FakeAnalyzer {
	return &FakeAnalyzer{Err: err}
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, report string) (string, error) {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reports = append(f.Reports, report)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// Calls returns how many times Analyze was invoked.
func (f *FakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Reports)
}
