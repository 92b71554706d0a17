package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"videobelajar/internal/domain"
	"videobelajar/internal/httpx"
)

const expectedNoError = "Expected no error, got %v"

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Header http.Header
}

// fakeBackend is a scripted course server; handler decides the response.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (fb *fakeBackend) all() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recordedRequest(nil), fb.requests...)
}

func newFakeBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(b), Header: r.Header.Clone()})
		fb.mu.Unlock()
		fb.handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 0), fb
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew(t *testing.T) {
	client := New("https://api.videobelajar.test/", 0)

	if client.BaseURL != "https://api.videobelajar.test" {
		t.Errorf("Expected BaseURL without trailing slash, got '%s'", client.BaseURL)
	}
	if client.HTTP == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.HTTP.Timeout != 0 {
		t.Errorf("Expected no timeout, got %v", client.HTTP.Timeout)
	}
}

func TestList(t *testing.T) {
	client, fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":1,"title":"A","price":0},{"id":"2","title":"B","price":150000},{"title":"no id"},42]`)
	})

	courses, err := client.List(context.Background())
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	// the id-less entry is kept for the store to sanitize; the bare number is skipped
	if len(courses) != 3 {
		t.Fatalf("Expected 3 courses, got %d", len(courses))
	}
	if courses[0].ID != "1" || courses[1].ID != "2" || courses[2].ID.Valid() {
		t.Errorf("Unexpected ids: %q %q %q", courses[0].ID, courses[1].ID, courses[2].ID)
	}
	if courses[1].Price != 150000 {
		t.Errorf("Expected price 150000, got %v", courses[1].Price)
	}

	req := fb.all()[0]
	if req.Method != http.MethodGet || req.Path != "/courses" {
		t.Errorf("Expected GET /courses, got %s %s", req.Method, req.Path)
	}
	if req.Header.Get(requestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
	if req.Header.Get("Accept-Encoding") != httpx.AcceptEncoding {
		t.Errorf("Expected Accept-Encoding %q, got %q", httpx.AcceptEncoding, req.Header.Get("Accept-Encoding"))
	}
}

func TestListNonArrayIsEmpty(t *testing.T) {
	client, _ := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"message":"not a list"}`)
	})

	courses, err := client.List(context.Background())
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if courses == nil || len(courses) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", courses)
	}
}

func TestFailureMessages(t *testing.T) {
	client, fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, `{"error":"boom"}`)
	})
	ctx := context.Background()

	testCases := []struct {
		name     string
		call     func() error
		op       string
		expected string
	}{
		{"list", func() error { _, err := client.List(ctx); return err }, OpList, "Failed to fetch courses"},
		{"get", func() error { _, err := client.Get(ctx, "1"); return err }, OpGet, "Failed to fetch course"},
		{"create", func() error { _, err := client.Create(ctx, domain.CoursePayload{}); return err }, OpCreate, "Failed to create course"},
		{"update", func() error { _, err := client.Update(ctx, "1", domain.CoursePayload{}); return err }, OpUpdate, "Failed to update course"},
		{"remove", func() error { _, err := client.Remove(ctx, "1"); return err }, OpRemove, "Failed to delete course"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(fb.all())
			err := tc.call()
			if err == nil {
				t.Fatal("Expected error")
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected *FetchError, got %T", err)
			}
			if fe.Op != tc.op {
				t.Errorf("Expected op %q, got %q", tc.op, fe.Op)
			}
			if err.Error() != tc.expected {
				t.Errorf("Expected message %q, got %q", tc.expected, err.Error())
			}
			var herr *httpx.HTTPError
			if !errors.As(err, &herr) || herr.StatusCode != 500 {
				t.Errorf("Expected wrapped HTTPError with status 500, got %v", fe.Err)
			}
			if len(fb.all())-before != 1 {
				t.Errorf("Expected a single attempt, got %d", len(fb.all())-before)
			}
		})
	}
}

func TestNotFoundIsPlainFailure(t *testing.T) {
	client, _ := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Update(context.Background(), "404", domain.CoursePayload{})
	if err == nil || err.Error() != "Failed to update course" {
		t.Errorf("Expected update failure message, got %v", err)
	}
}

func TestTransportFailure(t *testing.T) {
	client := New("http://127.0.0.1:1", 0)

	_, err := client.List(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *FetchError, got %T (%v)", err, err)
	}
	if fe.Message != "Failed to fetch courses" {
		t.Errorf("Expected list failure message, got %q", fe.Message)
	}
}

func TestCreate(t *testing.T) {
	client, fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 201, `{"id":9,"title":"X","price":0}`)
	})

	course, err := client.Create(context.Background(), domain.CourseForm{Title: "X", Price: "free-text"}.Payload())
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if course.ID != "9" || course.Price != 0 {
		t.Errorf("Unexpected course %+v", course)
	}

	req := fb.all()[0]
	if req.Method != http.MethodPost || req.Path != "/courses" {
		t.Errorf("Expected POST /courses, got %s %s", req.Method, req.Path)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(req.Body), &sent); err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if _, ok := sent["id"]; ok {
		t.Error("Expected create body without id")
	}
	if sent["price"] != float64(0) {
		t.Errorf("Expected price 0 in body, got %v", sent["price"])
	}
}

func TestUpdate(t *testing.T) {
	client, fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":5,"title":"Baru","price":2500}`)
	})

	course, err := client.Update(context.Background(), "5", domain.CoursePayload{Title: "Baru", Price: 2500})
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if course.Title != "Baru" {
		t.Errorf("Expected title 'Baru', got %q", course.Title)
	}
	req := fb.all()[0]
	if req.Method != http.MethodPut || req.Path != "/courses/5" {
		t.Errorf("Expected PUT /courses/5, got %s %s", req.Method, req.Path)
	}
	if !strings.Contains(req.Body, `"title":"Baru"`) {
		t.Errorf("Expected body to carry the title, got %s", req.Body)
	}
}

func TestRemove(t *testing.T) {
	client, fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ok, err := client.Remove(context.Background(), "3")
	if err != nil {
		t.Fatalf(expectedNoError, err)
	}
	if !ok {
		t.Error("Expected success flag to be true")
	}
	req := fb.all()[0]
	if req.Method != http.MethodDelete || req.Path != "/courses/3" {
		t.Errorf("Expected DELETE /courses/3, got %s %s", req.Method, req.Path)
	}
}

func TestRemoveIgnoresBody(t *testing.T) {
	client, _ := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `not json`)
	})

	if ok, err := client.Remove(context.Background(), "3"); err != nil || !ok {
		t.Errorf("Expected success, got ok=%v err=%v", ok, err)
	}
}

func TestGetMany(t *testing.T) {
	client, _ := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/courses/")
		if id == "2" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, 200, `{"id":"`+id+`","title":"T`+id+`"}`)
	})
	client.Workers = 2

	courses, errs := client.GetMany(context.Background(), []domain.ID{"1", "2", "3"})
	if len(courses) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(courses))
	}
	if courses[0].Title != "T1" || courses[2].Title != "T3" {
		t.Errorf("Expected results in id order, got %+v", courses)
	}
	if courses[1].ID.Valid() {
		t.Errorf("Expected failed slot to be empty, got %+v", courses[1])
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "course 2") {
		t.Errorf("Expected one error for course 2, got %v", errs)
	}
}
