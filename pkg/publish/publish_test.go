package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/internal/transport"
	"github.com/agentstation/gradesync/pkg/canvas"
	"github.com/agentstation/gradesync/pkg/errors"
	"github.com/agentstation/gradesync/pkg/logging"
	"github.com/agentstation/gradesync/pkg/policy"
	"github.com/agentstation/gradesync/pkg/roster"
)

type write struct {
	userID int64
	update canvas.SubmissionUpdate
}

// fakeGradebook serves submissions from memory and records writes.
type fakeGradebook struct {
	mu          sync.Mutex
	submissions map[int64]string // raw JSON per user
	fetchErr    map[int64]error
	updateErr   map[int64]error
	fetches     int
	writes      []write
}

func newFakeGradebook() *fakeGradebook {
	return &fakeGradebook{
		submissions: make(map[int64]string),
		fetchErr:    make(map[int64]error),
		updateErr:   make(map[int64]error),
	}
}

func (f *fakeGradebook) Submission(_ context.Context, _ string, _ int64, userID int64) (*canvas.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if err := f.fetchErr[userID]; err != nil {
		return nil, err
	}
	raw, ok := f.submissions[userID]
	if !ok {
		raw = `{"grade":null}`
	}
	var sub canvas.Submission
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (f *fakeGradebook) UpdateSubmission(_ context.Context, _ string, _ int64, userID int64, update canvas.SubmissionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[userID]; err != nil {
		return err
	}
	f.writes = append(f.writes, write{userID: userID, update: update})
	return nil
}

func scored(first, last string, score float64) roster.Record {
	return roster.Record{Origin: roster.OriginPlatform, FirstName: first, LastName: last, Score: roster.Float(score)}
}

var assignment = canvas.Assignment{ID: 7, Name: "ZyLab2"}

func TestPublishThresholdOverride(t *testing.T) {
	gb := newFakeGradebook()
	gb.submissions[1] = `{"grade":"50"}`
	gb.submissions[2] = `{"grade":"50"}`
	gb.submissions[3] = `{"grade":null}`
	gb.submissions[4] = `{"grade":"90"}`
	gb.submissions[5] = `{"id":5}`

	students := []canvas.Student{
		{ID: 1, SortableName: "Doe, Jane"},
		{ID: 2, SortableName: "Smith, John"},
		{ID: 3, SortableName: "Lovelace, Ada"},
		{ID: 4, SortableName: "Hopper, Grace"},
		{ID: 5, SortableName: "Turing, Alan"},
		{ID: 6, SortableName: "Nobody, Ann"},
	}
	lookup := NewGradeLookup([]roster.Record{
		scored("Jane", "Doe", 65),
		scored("John", "Smith", 62),
		scored("Ada", "Lovelace", 40),
		scored("Grace", "Hopper", 0),
		scored("Alan", "Turing", 100),
	}, nil)

	pub := New(gb, WithLogger(logging.NewNopLogger()))
	report, err := pub.Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	statuses := make([]Status, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		statuses = append(statuses, o.Status)
	}
	assert.Equal(t, []Status{
		StatusUpdated,
		StatusUnchanged,
		StatusUpdated,
		StatusMarkedMissing,
		StatusNoCurrentGrade,
		StatusNoCandidate,
	}, statuses)

	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.MarkedMissing)
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, 1, report.NoCurrentGrade)
	assert.Equal(t, 1, report.NoCandidate)
	assert.Zero(t, report.Failed)
	assert.Equal(t, policy.NameThresholdOverride, report.Policy)

	require.Len(t, gb.writes, report.Writes())
	late := int64(345600)
	assert.Equal(t, []write{
		{userID: 1, update: canvas.SubmissionUpdate{PostedGrade: 65, LatePolicyStatus: "late", SecondsLateOverride: &late}},
		{userID: 3, update: canvas.SubmissionUpdate{PostedGrade: 40, LatePolicyStatus: "late", SecondsLateOverride: &late}},
		{userID: 4, update: canvas.SubmissionUpdate{PostedGrade: 0, LatePolicyStatus: "missing"}},
	}, gb.writes)
	assert.Equal(t, 5, gb.fetches, "no fetch without a candidate")
}

func TestPublishProportionalCredit(t *testing.T) {
	gb := newFakeGradebook()
	gb.submissions[1] = `{"grade":"50"}`
	gb.submissions[2] = `{"grade":"80"}`

	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}, {ID: 2, SortableName: "Smith, John"}}
	lookup := NewGradeLookup([]roster.Record{scored("Jane", "Doe", 70), scored("John", "Smith", 75)}, nil)

	report, err := New(gb, WithPolicy(policy.NewProportionalCredit()), WithLogger(logging.NewNopLogger())).
		Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Unchanged)
	require.Len(t, gb.writes, 1)
	assert.InDelta(t, 66.0, gb.writes[0].update.PostedGrade, 1e-9)
	require.NotNil(t, gb.writes[0].update.SecondsLateOverride)
	assert.Zero(t, *gb.writes[0].update.SecondsLateOverride)
	assert.Equal(t, "late", gb.writes[0].update.LatePolicyStatus)
}

func TestPublishDirectSkipsSubmissionFetch(t *testing.T) {
	gb := newFakeGradebook()
	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}, {ID: 2, SortableName: "Cher"}}
	lookup := NewGradeLookup([]roster.Record{scored("Jane", "Doe", 0), scored("", "Cher", 9)}, nil)

	report, err := New(gb, WithPolicy(policy.NewDirect()), WithLogger(logging.NewNopLogger())).
		Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	assert.Zero(t, gb.fetches)
	assert.Equal(t, 1, report.MarkedMissing)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []write{
		{userID: 1, update: canvas.SubmissionUpdate{PostedGrade: 0, LatePolicyStatus: "missing"}},
		{userID: 2, update: canvas.SubmissionUpdate{PostedGrade: 9, LatePolicyStatus: "none"}},
	}, gb.writes)
}

func TestPublishContinuesAfterFailures(t *testing.T) {
	gb := newFakeGradebook()
	gb.fetchErr[1] = errors.NewAPIError("get submission", 404, "not found")
	gb.updateErr[2] = errors.NewAPIError("update submission", 400, "bad grade")
	gb.submissions[3] = `{"grade":"complete"}`

	students := []canvas.Student{
		{ID: 1, SortableName: "A, One"},
		{ID: 2, SortableName: "B, Two"},
		{ID: 3, SortableName: "C, Three"},
		{ID: 4, SortableName: "D, Four"},
	}
	lookup := NewGradeLookup([]roster.Record{
		scored("One", "A", 10), scored("Two", "B", 10), scored("Three", "C", 10), scored("Four", "D", 10),
	}, nil)

	tl := logging.NewTestLogger(t)
	report, err := New(gb, WithLogger(tl.Logger)).Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	assert.Equal(t, 2, report.NoCurrentGrade)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, StatusFailed, report.Outcomes[1].Status)
	assert.Contains(t, report.Outcomes[1].Error, "bad grade")
	assert.True(t, errors.IsNotFound(report.Outcomes[0].Err))

	tl.AssertContains(t, "Failed to update grade")
	tl.AssertContains(t, `"student":"B, Two"`)
	tl.AssertContains(t, `"assignment_name":"ZyLab2"`)
}

func TestPublishDryRun(t *testing.T) {
	gb := newFakeGradebook()
	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}, {ID: 2, SortableName: "Smith, John"}}
	lookup := NewGradeLookup([]roster.Record{scored("Jane", "Doe", 70), scored("John", "Smith", 0)}, nil)

	report, err := New(gb, WithDryRun(true), WithLogger(logging.NewNopLogger())).
		Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	assert.Empty(t, gb.writes)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.MarkedMissing)
	assert.True(t, strings.HasPrefix(report.String(), "dry run: "))
}

func TestPublishMissingCandidateAsZero(t *testing.T) {
	gb := newFakeGradebook()
	gb.submissions[1] = `{"grade":"88"}`
	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}}

	report, err := New(gb, WithMissingCandidateAsZero(true), WithLogger(logging.NewNopLogger())).
		Publish(context.Background(), "1", assignment, students, NewGradeLookup(nil, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, report.MarkedMissing)
	require.Len(t, gb.writes, 1)
	assert.Equal(t, "missing", gb.writes[0].update.LatePolicyStatus)
}

func TestPublishConcurrentMatchesSequential(t *testing.T) {
	var students []canvas.Student
	var records []roster.Record
	build := func() *fakeGradebook {
		gb := newFakeGradebook()
		for i := int64(1); i <= 40; i++ {
			gb.submissions[i] = fmt.Sprintf(`{"grade":"%d"}`, i%7*10)
		}
		gb.updateErr[13] = errors.NewAPIError("update submission", 500, "boom")
		return gb
	}
	for i := int64(1); i <= 40; i++ {
		first, last := fmt.Sprintf("F%d", i), fmt.Sprintf("L%d", i)
		students = append(students, canvas.Student{ID: i, SortableName: last + ", " + first})
		if i%5 != 0 {
			records = append(records, scored(first, last, float64(i%9*10)))
		}
	}
	lookup := NewGradeLookup(records, nil)

	seqGB, parGB := build(), build()
	seq, err := New(seqGB, WithLogger(logging.NewNopLogger())).Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)
	par, err := New(parGB, WithConcurrency(4), WithLogger(logging.NewNopLogger())).Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)

	if diff := cmp.Diff(seq, par, cmpopts.IgnoreFields(Outcome{}, "Err")); diff != "" {
		t.Errorf("concurrent report differs (-sequential +concurrent):\n%s", diff)
	}
	assert.Len(t, parGB.writes, len(seqGB.writes))
}

func TestPublishCancelled(t *testing.T) {
	gb := newFakeGradebook()
	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}}
	lookup := NewGradeLookup([]roster.Record{scored("Jane", "Doe", 70)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, n := range []int{1, 4} {
		report, err := New(gb, WithConcurrency(n), WithLogger(logging.NewNopLogger())).
			Publish(ctx, "1", assignment, students, lookup)
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, report)
		assert.Empty(t, report.Outcomes)
	}
	assert.Empty(t, gb.writes)
}

func TestWithConcurrencyBounds(t *testing.T) {
	assert.Equal(t, 1, New(nil, WithConcurrency(0)).concurrency)
	assert.Equal(t, 1, New(nil, WithConcurrency(-3)).concurrency)
	assert.Equal(t, 8, New(nil, WithConcurrency(100)).concurrency)
}

func TestGradeLookup(t *testing.T) {
	tl := logging.NewTestLogger(t)
	l := NewGradeLookup([]roster.Record{
		scored("Jane", "Doe", 10),
		scored(" Jane ", "Doe", 20),
		{FirstName: "No", LastName: "Score"},
		scored("jane", "doe", 30),
	}, tl.Logger)

	v, ok := l.Lookup("Jane", "Doe")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v, "later duplicate wins")

	v, ok = l.Lookup("jane", "doe")
	assert.True(t, ok)
	assert.Equal(t, 30.0, v, "names are case-sensitive")

	_, ok = l.Lookup("No", "Score")
	assert.False(t, ok)
	assert.Equal(t, 2, l.Len())
	tl.AssertContains(t, "Duplicate name")

	var nilLookup *GradeLookup
	_, ok = nilLookup.Lookup("a", "b")
	assert.False(t, ok)
	assert.Zero(t, nilLookup.Len())
}

// TestPublishAgainstCanvas runs the publisher against the real client and an
// httptest gradebook.
func TestPublishAgainstCanvas(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"user_id":1,"grade":"50"}`))
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(b))
			mu.Unlock()
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := canvas.New(server.URL, transport.New(&transport.BearerAuth{}, "tok",
		transport.WithRateLimit(0, 0),
		transport.WithRetry(0, time.Millisecond, time.Millisecond),
		transport.WithLogger(logging.NewNopLogger())))

	students := []canvas.Student{{ID: 1, SortableName: "Doe, Jane"}}
	lookup := NewGradeLookup([]roster.Record{scored("Jane", "Doe", 65)}, nil)

	report, err := New(client, WithLogger(logging.NewNopLogger())).Publish(context.Background(), "1", assignment, students, lookup)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	require.Len(t, bodies, 1)
	assert.JSONEq(t, `{"submission":{"posted_grade":65,"late_policy_status":"late","seconds_late_override":345600}}`, bodies[0])
}

func TestReportString(t *testing.T) {
	r := &Report{Updated: 2, MarkedMissing: 1, Unchanged: 3, NoCurrentGrade: 1, NoCandidate: 4, Failed: 0}
	assert.Equal(t, "2 updated, 1 marked missing, 3 unchanged, 1 without current grade, 4 without platform score, 0 failed", r.String())
	assert.Equal(t, 3, r.Writes())
}
