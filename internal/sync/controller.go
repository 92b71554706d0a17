// Package sync sequences user intents against the course store and the
// backend. At most one create/update/delete call is in flight at a time.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"

	"videobelajar/internal/domain"
	"videobelajar/internal/logger"
	"videobelajar/internal/metrics"
	"videobelajar/internal/store"
)

// User-facing messages.
const (
	MsgCreated      = "Kursus berhasil ditambahkan!"
	MsgUpdated      = "Kursus berhasil diperbarui!"
	MsgDeleted      = "Kursus berhasil dihapus!"
	MsgCreateFailed = "Gagal menambahkan kursus: "
	MsgUpdateFailed = "Gagal mengupdate kursus: "
	MsgDeleteFailed = "Gagal menghapus kursus: "
	PromptDelete    = "Yakin ingin menghapus kursus ini?"
)

// CourseAPI is the part of the backend client the controller drives.
type CourseAPI interface {
	List(ctx context.Context) ([]domain.Course, error)
	Create(ctx context.Context, payload domain.CoursePayload) (domain.Course, error)
	Update(ctx context.Context, id domain.ID, payload domain.CoursePayload) (domain.Course, error)
	Remove(ctx context.Context, id domain.ID) (bool, error)
}

// Controller owns the submitting gate and the editing target. The store it
// drives is shared with views; the controller is its only writer.
type Controller struct {
	api       CourseAPI
	store     *store.Store
	notifier  Notifier
	confirmer Confirmer

	allowDuringLoad bool

	mu         gosync.Mutex
	submitting bool
	loadActive bool
	editing    *domain.Course
}

type Option func(*Controller)

// WithNotifier sets where success/failure toasts go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithConfirmer sets the delete confirmation prompt. Without one every
// delete is declined.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirmer = cf }
}

// WithMutationsDuringLoad lets create/update/delete start while the catalog
// is loading. Off by default.
func WithMutationsDuringLoad(allow bool) Option {
	return func(c *Controller) { c.allowDuringLoad = allow }
}

func New(api CourseAPI, st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		api:       api,
		store:     st,
		notifier:  NotifierFunc(func(Notification) {}),
		confirmer: ConfirmerFunc(func(context.Context, string) bool { return false }),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View is what the presentation layer renders.
type View struct {
	Courses       []domain.Course
	Status        store.Status
	Error         string
	Submitting    bool
	EditingTarget *domain.Course
}

// EditOpen reports whether the edit surface is showing.
func (v View) EditOpen() bool { return v.EditingTarget != nil }

func (c *Controller) Snapshot() View {
	st := c.store.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		Courses:    st.Data,
		Status:     st.Status,
		Error:      st.Error,
		Submitting: c.submitting,
	}
	if c.editing != nil {
		target := *c.editing
		v.EditingTarget = &target
	}
	return v
}

// Load fetches the catalog if the store has never been loaded.
func (c *Controller) Load(ctx context.Context) Outcome {
	return c.load(ctx, "load", store.StatusIdle)
}

// RetryLoad reloads after a failed (or never started) load.
func (c *Controller) RetryLoad(ctx context.Context) Outcome {
	return c.load(ctx, "retry_load", store.StatusIdle, store.StatusFailed)
}

func (c *Controller) load(ctx context.Context, intent string, from ...store.Status) (out Outcome) {
	defer func() { metrics.ObserveIntent(intent, out.String()) }()

	c.mu.Lock()
	status := c.store.Snapshot().Status
	allowed := false
	for _, s := range from {
		if status == s {
			allowed = true
		}
	}
	if !allowed || c.loadActive {
		c.mu.Unlock()
		return OutcomeDropped
	}
	c.loadActive = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loadActive = false
		c.mu.Unlock()
	}()

	c.store.Dispatch(store.BeginLoad{})
	courses, err := c.api.List(ctx)
	if err != nil {
		c.store.Dispatch(store.ReceiveError{Message: messageOf(err)})
		logger.Warn("course load failed", slog.String("error", messageOf(err)))
		return OutcomeFailed
	}

	st := c.store.Dispatch(store.ReceiveList{Courses: courses})
	logger.Info("courses loaded", slog.Int("received", len(courses)), slog.Int("kept", len(st.Data)))
	return OutcomeDone
}

// SubmitCreate posts a new course built from form.
func (c *Controller) SubmitCreate(ctx context.Context, form domain.CourseForm) (out Outcome) {
	defer func() { metrics.ObserveIntent("create", out.String()) }()

	if !c.acquire() {
		return OutcomeDropped
	}
	defer c.release()

	created, err := c.api.Create(ctx, form.Payload())
	if err != nil {
		c.fail(MsgCreateFailed, err)
		return OutcomeFailed
	}

	c.store.Dispatch(store.Append{Course: created})
	c.succeed(MsgCreated)
	return OutcomeDone
}

// RequestEdit opens the edit surface for course.
func (c *Controller) RequestEdit(course domain.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = &course
}

// CancelEdit closes the edit surface without saving.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
}

// SubmitEdit saves form over the current editing target. On failure the
// edit surface stays open.
func (c *Controller) SubmitEdit(ctx context.Context, form domain.CourseForm) (out Outcome) {
	defer func() { metrics.ObserveIntent("update", out.String()) }()

	c.mu.Lock()
	var target domain.Course
	hasTarget := c.editing != nil
	if hasTarget {
		target = *c.editing
	}
	c.mu.Unlock()
	if !hasTarget {
		return OutcomeNoTarget
	}

	if !c.acquire() {
		return OutcomeDropped
	}
	defer c.release()

	updated, err := c.api.Update(ctx, target.ID, form.Payload())
	if err != nil {
		c.fail(MsgUpdateFailed, err)
		return OutcomeFailed
	}

	c.store.Dispatch(store.Replace{Course: updated})
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
	c.succeed(MsgUpdated)
	return OutcomeDone
}

// RequestDelete removes a course after the user confirms.
func (c *Controller) RequestDelete(ctx context.Context, id domain.ID) (out Outcome) {
	defer func() { metrics.ObserveIntent("delete", out.String()) }()

	if !c.confirmer.Confirm(ctx, PromptDelete) {
		return OutcomeDeclined
	}

	if !c.acquire() {
		return OutcomeDropped
	}
	defer c.release()

	if _, err := c.api.Remove(ctx, id); err != nil {
		c.fail(MsgDeleteFailed, err)
		return OutcomeFailed
	}

	c.store.Dispatch(store.Remove{ID: id})
	c.mu.Lock()
	if c.editing != nil && c.editing.ID == id {
		c.editing = nil
	}
	c.mu.Unlock()
	c.succeed(MsgDeleted)
	return OutcomeDone
}

// acquire takes the submitting gate. It fails while another mutation is in
// flight, or while the catalog is loading unless allowDuringLoad is set.
func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return false
	}
	if !c.allowDuringLoad && c.store.Snapshot().Status == store.StatusLoading {
		return false
	}
	c.submitting = true
	metrics.MutationsInFlight.Inc()
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
	metrics.MutationsInFlight.Dec()
}

func (c *Controller) succeed(msg string) {
	c.notifier.Notify(Notification{Kind: KindSuccess, Message: msg})
}

func (c *Controller) fail(prefix string, err error) {
	msg := messageOf(err)
	logger.Warn("course mutation failed", slog.String("error", msg))
	c.notifier.Notify(Notification{Kind: KindError, Message: prefix + msg})
}

func messageOf(err error) string {
	if err == nil || err.Error() == "" {
		return store.UnknownError
	}
	return err.Error()
}
