package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapInsertError(t *testing.T) {
	assert.NoError(t, mapInsertError(nil))
	assert.ErrorIs(t, mapInsertError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, mapInsertError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})), ErrUnknownReference)

	other := &pgconn.PgError{Code: "22P02"}
	assert.Same(t, other, mapInsertError(other))

	plain := errors.New("connection reset")
	assert.Same(t, plain, mapInsertError(plain))
}
