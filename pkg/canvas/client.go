// Package canvas is a client for the subset of the Canvas LMS REST API used to
// publish grades: course rosters, assignments and submissions.
package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/gradesync/internal/transport"
	"github.com/agentstation/gradesync/pkg/constants"
)

// Client talks to one Canvas API endpoint.
type Client struct {
	endpoint string
	http     *transport.Client
	fetcher  *Fetcher
}

// New creates a Client. endpoint is the API base, e.g. https://canvas.example.edu/api/v1.
func New(endpoint string, http *transport.Client) *Client {
	if endpoint == "" {
		endpoint = constants.DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http,
		fetcher:  NewFetcher(http),
	}
}

// Endpoint returns the API base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) courseURL(courseID string, parts ...string) string {
	u := c.endpoint + "/courses/" + url.PathEscape(courseID)
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

func perPage() url.Values {
	return url.Values{"per_page": {strconv.Itoa(constants.DefaultPageSize)}}
}

// Students lists every student enrolled in the course.
func (c *Client) Students(ctx context.Context, courseID string) ([]Student, error) {
	params := perPage()
	params.Set("enrollment_type", "student")
	return FetchAllAs[Student](ctx, c.fetcher, c.courseURL(courseID, "users"), params)
}

// Assignments lists every assignment in the course.
func (c *Client) Assignments(ctx context.Context, courseID string) ([]Assignment, error) {
	return FetchAllAs[Assignment](ctx, c.fetcher, c.courseURL(courseID, "assignments"), perPage())
}

func (c *Client) submissionURL(courseID string, assignmentID, userID int64) string {
	return c.courseURL(courseID,
		"assignments", strconv.FormatInt(assignmentID, 10),
		"submissions", strconv.FormatInt(userID, 10))
}

// Submission returns one student's submission for an assignment.
func (c *Client) Submission(ctx context.Context, courseID string, assignmentID, userID int64) (*Submission, error) {
	resp, err := c.http.Get(ctx, c.submissionURL(courseID, assignmentID, userID))
	if err != nil {
		return nil, err
	}
	var sub Submission
	if err := transport.DecodeResponse(resp, fmt.Sprintf("get submission for user %d", userID), &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubmission posts a grade for one student.
func (c *Client) UpdateSubmission(ctx context.Context, courseID string, assignmentID, userID int64, update SubmissionUpdate) error {
	resp, err := c.http.Put(ctx, c.submissionURL(courseID, assignmentID, userID), update)
	if err != nil {
		return err
	}
	if err := transport.CheckResponse(resp, fmt.Sprintf("update submission for user %d", userID)); err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
