package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDSNSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=carinfo user=app",
		safeDSNSummary("postgres://app:secret@db:5432/carinfo?sslmode=disable"))
	assert.Equal(t, "host=db db=carinfo user=app",
		safeDSNSummary("postgres://app:secret@db/carinfo"))
	assert.Equal(t, "dsn: parse error", safeDSNSummary("postgres://%zz"))
}
