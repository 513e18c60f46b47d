package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessEnvelope(t *testing.T) {
	resp := Success(map[string]int{"count": 3})
	assert.True(t, resp.Success)
	assert.Equal(t, "v1", resp.SchemaVersion)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Error)
}

func TestErrorEnvelope(t *testing.T) {
	resp := Error(errors.New("no roles available"))
	assert.False(t, resp.Success)
	assert.Equal(t, "no roles available", resp.Error)
	assert.Nil(t, resp.Data)
}
