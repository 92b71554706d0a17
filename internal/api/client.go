// Package api is the HTTP client for the course catalog backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"videobelajar/internal/concurrency"
	"videobelajar/internal/domain"
	"videobelajar/internal/httpx"
	"videobelajar/internal/logger"
	"videobelajar/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// Operation names, used as metric labels and in FetchError.Op.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)

var failureMessages = map[string]string{
	OpList:   "Failed to fetch courses",
	OpGet:    "Failed to fetch course",
	OpCreate: "Failed to create course",
	OpUpdate: "Failed to update course",
	OpRemove: "Failed to delete course",
}

// FetchError is the single failure kind of the client. Transport errors,
// non-2xx responses and undecodable bodies all collapse into it; Err keeps
// the cause for logging.
type FetchError struct {
	Op      string
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }

func fetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Message: failureMessages[op], Err: err}
}

type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Workers bounds GetMany parallelism; <=0 uses concurrency defaults.
	Workers int
}

// New builds a client. timeout 0 means requests never time out.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// List fetches every course. A body that is not a JSON array is treated as
// an empty list; array elements that are not objects are skipped. Entries
// without id are kept here and dropped by the store.
func (c *Client) List(ctx context.Context) ([]domain.Course, error) {
	var raw json.RawMessage
	if err := c.do(ctx, OpList, http.MethodGet, "/courses", nil, &raw); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("course list response is not an array", slog.String("error", err.Error()))
		return []domain.Course{}, nil
	}

	out := make([]domain.Course, 0, len(items))
	for i, item := range items {
		var course domain.Course
		if err := json.Unmarshal(item, &course); err != nil {
			logger.Debug("skipping malformed course entry", slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		out = append(out, course)
	}
	return out, nil
}

// Get fetches a single course.
func (c *Client) Get(ctx context.Context, id domain.ID) (domain.Course, error) {
	var out domain.Course
	err := c.do(ctx, OpGet, http.MethodGet, coursePath(id), nil, &out)
	return out, err
}

// Create posts a new course; the server assigns the id.
func (c *Client) Create(ctx context.Context, payload domain.CoursePayload) (domain.Course, error) {
	var out domain.Course
	err := c.do(ctx, OpCreate, http.MethodPost, "/courses", payload, &out)
	return out, err
}

// Update replaces every mutable field of the course with the given id.
func (c *Client) Update(ctx context.Context, id domain.ID, payload domain.CoursePayload) (domain.Course, error) {
	var out domain.Course
	err := c.do(ctx, OpUpdate, http.MethodPut, coursePath(id), payload, &out)
	return out, err
}

// Remove deletes a course. The response body is ignored.
func (c *Client) Remove(ctx context.Context, id domain.ID) (bool, error) {
	if err := c.do(ctx, OpRemove, http.MethodDelete, coursePath(id), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetMany fetches several courses in parallel. Results keep the order of ids;
// failed lookups leave a zero Course in their slot and add to the error list.
func (c *Client) GetMany(ctx context.Context, ids []domain.ID) ([]domain.Course, []error) {
	opts := concurrency.DefaultOptions()
	if c.Workers > 0 {
		opts.MaxWorkers = c.Workers
	}
	return concurrency.ProcessParallel(ctx, ids, opts, func(ctx context.Context, _ int, id domain.ID) (domain.Course, error) {
		course, err := c.Get(ctx, id)
		if err != nil {
			return domain.Course{}, fmt.Errorf("course %s: %w", id, err)
		}
		return course, nil
	})
}

func coursePath(id domain.ID) string {
	return "/courses/" + url.PathEscape(id.String())
}

// do issues exactly one request; every failure comes back as *FetchError.
func (c *Client) do(ctx context.Context, op, method, path string, in any, out any) (err error) {
	timer := metrics.NewTimer()
	requestID := uuid.NewString()
	log := logger.WithRequestID(requestID).With(slog.String("op", op), slog.String("method", method), slog.String("path", path))

	defer func() {
		metrics.ObserveAPICall(op, timer.Elapsed(), err)
		if err != nil {
			log.Warn("course api call failed", slog.Duration("elapsed", timer.Elapsed()), slog.String("cause", causeOf(err)))
			return
		}
		log.Debug("course api call", slog.Duration("elapsed", timer.Elapsed()))
	}()

	var body *bytes.Reader
	if in != nil {
		b, mErr := json.Marshal(in)
		if mErr != nil {
			return fetchError(op, fmt.Errorf("api: encode body: %w", mErr))
		}
		body = bytes.NewReader(b)
	}

	var req *http.Request
	var rErr error
	if body != nil {
		req, rErr = httpx.NewRequest(ctx, method, c.BaseURL+path, body)
	} else {
		req, rErr = httpx.NewRequest(ctx, method, c.BaseURL+path, nil)
	}
	if rErr != nil {
		return fetchError(op, fmt.Errorf("api: build request: %w", rErr))
	}
	req.Header.Set(requestIDHeader, requestID)

	if out == nil {
		_, _, dErr := httpx.Do(c.HTTP, req)
		if dErr != nil {
			return fetchError(op, dErr)
		}
		return nil
	}
	if dErr := httpx.DoJSON(c.HTTP, req, out); dErr != nil {
		return fetchError(op, dErr)
	}
	return nil
}

func causeOf(err error) string {
	if fe, ok := err.(*FetchError); ok && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}
