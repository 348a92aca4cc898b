package models

import "time"

// Todo is a to-do item. OwnerID is set at creation and never reassigned.
type Todo struct {
	ID          string
	OwnerID     string
	Text        string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// TodoPatch lists the mutable fields of a Todo; nil means "leave unchanged".
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// Apply applies p to t. Switching to completed stamps CompletedAt with now,
// switching back clears it.
func (p TodoPatch) Apply(t *Todo, now time.Time) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		if t.Completed {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
}
