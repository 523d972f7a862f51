package mysql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"hotel_pipeline/internal/domain"
)

func TestClassify(t *testing.T) {
	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.ErrorIs(t, classify(fk), domain.ErrMissingParent)
	assert.ErrorIs(t, classify(fmt.Errorf("exec: %w", fk)), domain.ErrMissingParent)

	chk := &mysql.MySQLError{Number: 3819, Message: "Check constraint 'chk_price_nonneg' is violated."}
	assert.ErrorIs(t, classify(chk), domain.ErrInvalidRecord)

	other := errors.New("conn reset")
	assert.Equal(t, other, classify(other))

	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicate(fk))
}

func TestEscapeLikeAndPlaceholders(t *testing.T) {
	assert.Equal(t, "100!%!_off!!", escapeLike("100%_off!"))
	assert.Equal(t, "?,?,?", placeholders(3))
	assert.Equal(t, "?", placeholders(1))
}
