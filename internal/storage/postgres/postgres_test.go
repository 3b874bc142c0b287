package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgvectorLiteral(t *testing.T) {
	assert.Equal(t, "[1,2.5,-3]", pgvectorLiteral([]float32{1, 2.5, -3}))
	assert.Nil(t, pgvectorLiteral(nil))
	assert.Nil(t, pgvectorLiteral([]float32{}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "kernel_agents_pkey"`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
