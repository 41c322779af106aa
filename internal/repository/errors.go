package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrMemberNotFound is returned when a membership row is not found
	ErrMemberNotFound = errors.New("member not found")

	// ErrAlreadyMember is returned when the (project, user) pair already exists
	ErrAlreadyMember = errors.New("user is already a member of this project")

	// ErrAlreadyAssigned is returned when the (task, user) pair already exists
	ErrAlreadyAssigned = errors.New("user is already assigned to this task")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
