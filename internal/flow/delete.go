package flow

import (
	"context"
	"errors"
	"fmt"
)

// State of a delete confirmation
type State int

const (
	Idle State = iota
	ConfirmPending
	Deleting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmPending:
		return "confirm-pending"
	case Deleting:
		return "deleting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBusy is returned when a delete is requested while another one is
	// awaiting confirmation or still in flight
	ErrBusy = errors.New("a delete is already in progress")

	// ErrNotPending is returned by Confirm when nothing awaits confirmation
	ErrNotPending = errors.New("no delete awaiting confirmation")
)

// Remover deletes a task by id
type Remover interface {
	Remove(ctx context.Context, id int64) error
}

// Delete guards a destructive action behind an explicit confirmation. It
// tracks at most one task id at a time. The zero value is Idle.
type Delete struct {
	state  State
	taskID int64
}

// State returns the current state
func (d *Delete) State() State {
	return d.state
}

// TaskID returns the id being confirmed or deleted, 0 when Idle
func (d *Delete) TaskID() int64 {
	return d.taskID
}

// Active reports whether a confirmation is open or a delete is in flight
func (d *Delete) Active() bool {
	return d.state != Idle
}

// Request opens the confirmation for id
func (d *Delete) Request(id int64) error {
	if d.state != Idle {
		return ErrBusy
	}
	d.state = ConfirmPending
	d.taskID = id
	return nil
}

// Cancel closes an open confirmation. It does nothing once the delete is in
// flight.
func (d *Delete) Cancel() {
	if d.state != ConfirmPending {
		return
	}
	d.state = Idle
	d.taskID = 0
}

// Confirm moves to Deleting and returns the id the caller must remove
func (d *Delete) Confirm() (int64, error) {
	if d.state != ConfirmPending {
		return 0, ErrNotPending
	}
	d.state = Deleting
	return d.taskID, nil
}

// Settle returns to Idle once the remote call has finished, whatever its
// outcome, and reports the notice to show
func (d *Delete) Settle(err error) Notice {
	d.state = Idle
	d.taskID = 0
	if err != nil {
		return Notice{
			Title:   "Error",
			Body:    "Failed to delete task. Please try again.",
			Variant: VariantError,
			Err:     err,
		}
	}
	return Notice{
		Title:   "Success",
		Body:    "Task deleted successfully",
		Variant: VariantSuccess,
	}
}

// Run confirms the pending delete, removes the task and settles
func (d *Delete) Run(ctx context.Context, r Remover) (Notice, error) {
	id, err := d.Confirm()
	if err != nil {
		return Notice{}, err
	}
	return d.Settle(r.Remove(ctx, id)), nil
}
