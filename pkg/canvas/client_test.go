package canvas

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/gradesync/pkg/errors"
)

func TestClientStudentsAndAssignments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/courses/4242/users":
			assert.Equal(t, "student", r.URL.Query().Get("enrollment_type"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`[{"id":1,"name":"Jane Doe","sortable_name":"Doe, Jane"},{"id":2,"name":"Ada","sortable_name":"Ada"}]`))
		case "/api/v1/courses/4242/assignments":
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`[{"id":7,"name":"ZyLab2","points_possible":10}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := New(server.URL+"/api/v1/", newTestTransport())
	assert.Equal(t, server.URL+"/api/v1", c.Endpoint())

	students, err := c.Students(context.Background(), "4242")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, Student{ID: 1, Name: "Jane Doe", SortableName: "Doe, Jane"}, students[0])

	assignments, err := c.Assignments(context.Background(), "4242")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, int64(7), assignments[0].ID)
	require.NotNil(t, assignments[0].PointsPossible)
	assert.Equal(t, 10.0, *assignments[0].PointsPossible)
}

func TestClientSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses/1/assignments/7/submissions/3":
			_, _ = w.Write([]byte(`{"id":99,"user_id":3,"assignment_id":7,"grade":"8.5","score":8.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"message":"The specified resource does not exist."}]}`))
		}
	}))
	defer server.Close()

	c := New(server.URL, newTestTransport())

	sub, err := c.Submission(context.Background(), "1", 7, 3)
	require.NoError(t, err)
	grade, ok, err := sub.CurrentGrade()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8.5, grade)

	_, err = c.Submission(context.Background(), "1", 7, 4)
	assert.True(t, errors.IsNotFound(err))
}

func TestClientUpdateSubmission(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/courses/1/assignments/7/submissions/3", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL, newTestTransport())
	late := int64(345600)

	err := c.UpdateSubmission(context.Background(), "1", 7, 3, SubmissionUpdate{
		PostedGrade:         65,
		LatePolicyStatus:    "late",
		SecondsLateOverride: &late,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"submission":{"posted_grade":65,"late_policy_status":"late","seconds_late_override":345600}}`, string(body))

	err = c.UpdateSubmission(context.Background(), "1", 7, 3, SubmissionUpdate{PostedGrade: 0, LatePolicyStatus: "missing"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"submission":{"posted_grade":0,"late_policy_status":"missing"}}`, string(body))
}

func TestClientUpdateSubmissionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":"bad grade"}`))
	}))
	defer server.Close()

	err := New(server.URL, newTestTransport()).UpdateSubmission(context.Background(), "1", 7, 3, SubmissionUpdate{})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, apiErr.Retryable())
}

func TestSubmissionCurrentGrade(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		grade   float64
		present bool
		wantErr bool
	}{
		{name: "string grade", json: `{"grade":"42"}`, grade: 42, present: true},
		{name: "numeric grade", json: `{"grade":7.25}`, grade: 7.25, present: true},
		{name: "null grade", json: `{"grade":null}`, grade: 0, present: true},
		{name: "empty string", json: `{"grade":""}`, grade: 0, present: true},
		{name: "missing key", json: `{"id":1}`, present: false},
		{name: "letter grade", json: `{"grade":"complete"}`, present: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub Submission
			require.NoError(t, json.Unmarshal([]byte(tt.json), &sub))
			assert.Equal(t, tt.present, sub.HasGrade)

			grade, ok, err := sub.CurrentGrade()
			assert.Equal(t, tt.present, ok)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.grade, grade)
		})
	}
}
