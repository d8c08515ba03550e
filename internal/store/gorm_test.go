package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturningIDDetection(t *testing.T) {
	assert.True(t, returningID.MatchString("INSERT INTO sales (invoice_number) VALUES (?) RETURNING id"))
	assert.True(t, returningID.MatchString("insert into packages (description)\n values (?)\n returning ID"))
	assert.False(t, returningID.MatchString("UPDATE lots SET x = 1"))
	assert.False(t, returningID.MatchString("INSERT INTO t (a) VALUES (1) RETURNING identifier"))
}
