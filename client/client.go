// Package client is the Go consumer SDK for the academy API. It mirrors the
// data-access layer of the web frontend: a typed HTTP client, a generic
// request-lifecycle resource, and a per-user local enrollment/favorites store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"academy/backend/models"
)

// APIError carries the HTTP status and server message of a failed request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewWithHTTPClient is used by tests and callers that need a custom transport.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if msg, ok := payload["error"].(string); ok && msg != "" {
			apiErr.Message = msg
		} else if msg, ok := payload["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
	}

	return apiErr
}

// CourseListOptions are the exact-match filters of GET /api/courses.
type CourseListOptions struct {
	Category string
	Level    string
	Featured *bool
}

func (c *Client) ListCourses(ctx context.Context, opts CourseListOptions) ([]models.Course, error) {
	query := url.Values{}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Level != "" {
		query.Set("level", opts.Level)
	}
	if opts.Featured != nil {
		query.Set("featured", strconv.FormatBool(*opts.Featured))
	}

	var courses []models.Course
	err := c.do(ctx, http.MethodGet, "/api/courses", query, nil, &courses)
	return courses, err
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.do(ctx, http.MethodGet, "/api/courses/categories", nil, nil, &categories)
	return categories, err
}

func (c *Client) GetCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	var course models.Course
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/courses/%d", courseID), nil, nil, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	var created models.Course
	err := c.do(ctx, http.MethodPost, "/api/courses", nil, course, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SearchFilters are the optional constraints of GET /api/search/courses.
type SearchFilters struct {
	Category   string
	Level      string
	MinRating  *float64
	MaxPrice   *float64
	Instructor string
	Tags       []string
}

// SearchResult is the search envelope: the matched page, its size, and the
// query and filters the server actually applied.
type SearchResult struct {
	Results []models.Course        `json:"results"`
	Total   int                    `json:"total"`
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters"`
}

// SearchCourses always sends the search text under the key "q" — the server
// rejects any request without that exact key.
func (c *Client) SearchCourses(ctx context.Context, searchText string, filters SearchFilters) (*SearchResult, error) {
	query := url.Values{}
	query.Set("q", searchText)
	if filters.Category != "" {
		query.Set("category", filters.Category)
	}
	if filters.Level != "" {
		query.Set("level", filters.Level)
	}
	if filters.MinRating != nil {
		query.Set("minRating", strconv.FormatFloat(*filters.MinRating, 'f', -1, 64))
	}
	if filters.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*filters.MaxPrice, 'f', -1, 64))
	}
	if filters.Instructor != "" {
		query.Set("instructor", filters.Instructor)
	}
	if len(filters.Tags) > 0 {
		query.Set("tags", strings.Join(filters.Tags, ","))
	}

	var result SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/search/courses", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EnrollResult is the server acknowledgment of a successful enrollment.
type EnrollResult struct {
	Success      bool `json:"success"`
	EnrollmentID uint `json:"enrollmentId"`
	CourseID     uint `json:"courseId"`
	UserID       uint `json:"userId"`
}

func (c *Client) Enroll(ctx context.Context, userID, courseID uint) (*EnrollResult, error) {
	body := map[string]uint{
		"userId":   userID,
		"courseId": courseID,
	}

	var result EnrollResult
	if err := c.do(ctx, http.MethodPost, "/api/enrollments", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListUserEnrollments(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/enrollments/user/%d", userID), nil, nil, &enrollments)
	return enrollments, err
}

// UnenrollResult is the server acknowledgment of a deletion.
type UnenrollResult struct {
	Success   bool `json:"success"`
	DeletedID uint `json:"deletedId"`
}

func (c *Client) Unenroll(ctx context.Context, enrollmentID uint) (*UnenrollResult, error) {
	var result UnenrollResult
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/enrollments/%d", enrollmentID), nil, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EnrollmentProgress is the derived progress of one enrollment.
type EnrollmentProgress struct {
	EnrollmentID     uint       `json:"enrollmentId"`
	Progress         int        `json:"progress"`
	CompletedLessons int        `json:"completedLessons"`
	TotalLessons     int        `json:"totalLessons"`
	CompletedAt      *time.Time `json:"completedAt"`
}

func (c *Client) GetEnrollmentProgress(ctx context.Context, enrollmentID uint) (*EnrollmentProgress, error) {
	var progress EnrollmentProgress
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/enrollments/%d/progress", enrollmentID), nil, nil, &progress)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
