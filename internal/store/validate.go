package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskcal/internal/model"
)

var validate = validator.New()

// ValidationError reports a task that would break a model invariant.
type ValidationError struct {
	TaskID string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid task %q: %v", e.TaskID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Fields lists the struct fields that failed tag validation, if any.
func (e *ValidationError) Fields() []string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Namespace())
	}
	return out
}

func validateTask(t model.Task) error {
	if err := validate.Struct(t); err != nil {
		return &ValidationError{TaskID: t.ID, Err: err}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{TaskID: t.ID, Err: errors.New("title is blank")}
	}
	seen := make(map[string]struct{}, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if _, dup := seen[st.ID]; dup {
			return &ValidationError{TaskID: t.ID, Err: fmt.Errorf("duplicate subtask id %q", st.ID)}
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}
