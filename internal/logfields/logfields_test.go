package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, KeyBookID, BookID("42").Key)
	assert.Equal(t, "42", BookID("42").Value.String())
	assert.Equal(t, int64(404), StatusCode(404).Value.Int64())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}
