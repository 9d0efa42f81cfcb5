package crud

import (
	"context"
	"errors"
)

// ErrNoPendingDelete is returned by ConfirmDelete when nothing is marked.
var ErrNoPendingDelete = errors.New("no deletion pending")

// Keyed is implemented by every entity shown in a list.
type Keyed interface {
	Key() string
}

// ListState is the local state of a list screen.
type ListState[T Keyed] struct {
	Items         []T
	PendingDelete string
	Error         string
}

// NewListState wraps items, substituting an empty slice for nil.
func NewListState[T Keyed](items []T) *ListState[T] {
	if items == nil {
		items = []T{}
	}
	return &ListState[T]{Items: items}
}

// MarkDelete asks for confirmation before deleting key.
func (l *ListState[T]) MarkDelete(key string) {
	l.PendingDelete = key
}

// CancelDelete drops the pending deletion and leaves Items untouched.
func (l *ListState[T]) CancelDelete() {
	l.PendingDelete = ""
}

// Pending returns the item awaiting confirmation, if any.
func (l *ListState[T]) Pending() (T, bool) {
	for _, it := range l.Items {
		if l.PendingDelete != "" && it.Key() == l.PendingDelete {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// ConfirmDelete calls del for the pending key.
// POST: On success exactly that item is removed; on failure Items is unchanged and Error is set
func (l *ListState[T]) ConfirmDelete(ctx context.Context, del func(ctx context.Context, key string) error) error {
	key := l.PendingDelete
	if key == "" {
		return ErrNoPendingDelete
	}
	l.PendingDelete = ""
	if err := del(ctx, key); err != nil {
		l.Error = Message(err)
		return err
	}
	kept := l.Items[:0:0]
	for _, it := range l.Items {
		if it.Key() != key {
			kept = append(kept, it)
		}
	}
	l.Items = kept
	return nil
}
