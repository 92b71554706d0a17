package sync

import "context"

// Outcome is the result of an intent.
type Outcome int

const (
	// OutcomeDone: the call succeeded and the store was updated.
	OutcomeDone Outcome = iota
	// OutcomeFailed: the call failed; the user was notified and, for
	// mutations, the store was left untouched.
	OutcomeFailed
	// OutcomeDropped: the gate was closed, nothing happened.
	OutcomeDropped
	// OutcomeDeclined: the user did not confirm.
	OutcomeDeclined
	// OutcomeNoTarget: an edit was submitted with no course selected.
	OutcomeNoTarget
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeFailed:
		return "failed"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDeclined:
		return "declined"
	case OutcomeNoTarget:
		return "no_target"
	}
	return "unknown"
}

type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

// Notification is a toast.
type Notification struct {
	Kind    Kind
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }
