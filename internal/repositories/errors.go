package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicate = errors.New("duplicate key")
	// ErrProjectMissing is returned when a transaction cannot lock its project.
	ErrProjectMissing = errors.New("project does not exist")
	// ErrForeignTask: a task in a reorder list is missing, belongs to another
	// project, or sits in another column.
	ErrForeignTask = errors.New("task does not belong to the column")
	// ErrIncompleteColumn: a reorder list leaves out tasks of the destination column.
	ErrIncompleteColumn = errors.New("task order does not cover the column")
)

const pqUniqueViolation = "23505"

func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
