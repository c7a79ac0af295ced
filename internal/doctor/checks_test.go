package doctor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{CheckStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestCheckResult_JSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "x", Category: CategoryStore, Status: StatusWarn, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","category":"STORE","status":"warn","message":"m"}`, string(data))

	var back CheckResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, StatusWarn, back.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &back))
}

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	results  []CheckResult // returned in turn; the last one repeats
	runs     int
	fixErr   error
	fixCalls int
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run() CheckResult {
	i := m.runs
	if i >= len(m.results) {
		i = len(m.results) - 1
	}
	m.runs++
	return m.results[i]
}
func (m *mockCheck) Fix() error {
	m.fixCalls++
	return m.fixErr
}

func mock(name string, results ...CheckResult) *mockCheck {
	return &mockCheck{name: name, category: "TEST", results: results}
}

func TestRunAll(t *testing.T) {
	checks := []Check{
		mock("check1", CheckResult{Status: StatusPass, Message: "OK"}),
		mock("check2", CheckResult{Status: StatusFail, Message: "Failed"}),
	}

	results := RunAll(checks)

	require.Len(t, results, 2)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusFail, results[1].Status)
	// Name and category are filled in from the check.
	assert.Equal(t, "check1", results[0].Name)
	assert.Equal(t, "TEST", results[1].Category)
}

func TestRunAllParallel(t *testing.T) {
	checks := []Check{
		mock("check1", CheckResult{Status: StatusPass}),
		mock("check2", CheckResult{Status: StatusWarn}),
		mock("check3", CheckResult{Status: StatusFail}),
	}

	results := RunAllParallel(checks)

	require.Len(t, results, 3)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusWarn, results[1].Status)
	assert.Equal(t, StatusFail, results[2].Status)
}

func TestFixAll(t *testing.T) {
	fixed := mock("fixed",
		CheckResult{Status: StatusWarn, Fixable: true},
		CheckResult{Status: StatusPass},
	)
	broken := mock("broken", CheckResult{Status: StatusFail, Fixable: true})
	broken.fixErr = errors.New("nope")
	manual := mock("manual", CheckResult{Status: StatusFail})
	passing := mock("passing", CheckResult{Status: StatusPass, Fixable: true})

	checks := []Check{fixed, broken, manual, passing}
	results, errs := FixAll(checks, RunAll(checks))

	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, StatusFail, results[2].Status)

	assert.Equal(t, 1, fixed.fixCalls)
	assert.Equal(t, 1, broken.fixCalls)
	assert.Zero(t, manual.fixCalls)
	assert.Zero(t, passing.fixCalls)

	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "broken: nope")
}

func TestGroupByCategory(t *testing.T) {
	grouped := GroupByCategory([]CheckResult{
		{Name: "c1", Category: "A"},
		{Name: "c2", Category: "B"},
		{Name: "c3", Category: "A"},
	})

	require.Len(t, grouped["A"], 2)
	assert.Equal(t, "c3", grouped["A"][1].Name)
	assert.Len(t, grouped["B"], 1)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]CheckResult{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
		{Status: StatusFail},
	})

	assert.Equal(t, 2, counts[StatusPass])
	assert.Equal(t, 1, counts[StatusWarn])
	assert.Equal(t, 1, counts[StatusFail])
}

func TestHasFailuresAndIssues(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		failures bool
		issues   bool
	}{
		{"all pass", []CheckResult{{Status: StatusPass}, {Status: StatusPass}}, false, false},
		{"with warn", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, false, true},
		{"with fail", []CheckResult{{Status: StatusPass}, {Status: StatusFail}}, true, true},
		{"empty", nil, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.failures, HasFailures(tc.results))
			assert.Equal(t, tc.issues, HasIssues(tc.results))
		})
	}
}

func TestFixableCount(t *testing.T) {
	results := []CheckResult{
		{Status: StatusPass, Fixable: true},  // Pass, not counted
		{Status: StatusFail, Fixable: true},  // Counted
		{Status: StatusFail, Fixable: false}, // Not counted
		{Status: StatusWarn, Fixable: true},  // Counted
	}

	assert.Equal(t, 2, FixableCount(results))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		expected string
	}{
		{"all good", []CheckResult{{Status: StatusPass}}, "Everything looks good"},
		{"one issue", []CheckResult{{Status: StatusFail}}, "1 issue found"},
		{"multiple issues", []CheckResult{{Status: StatusFail}, {Status: StatusWarn}}, "2 issues found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Summary(tc.results))
		})
	}
}
