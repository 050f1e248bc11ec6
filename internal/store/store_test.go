package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pq.Error{Code: "23505", Constraint: "users_username_key"}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", unique)))

	fk := &pq.Error{Code: "23503"}
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestRequireRow(t *testing.T) {
	t.Parallel()

	assert.NoError(t, requireRow(fakeResult{rows: 1}))
	assert.ErrorIs(t, requireRow(fakeResult{rows: 0}), ErrNotFound)
	assert.Error(t, requireRow(fakeResult{err: errors.New("driver does not support RowsAffected")}))
}
