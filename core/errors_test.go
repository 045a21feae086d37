package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "outflow.core")
	defer teardown()
	//
	base := errors.New("fragment vanished")
	err := WrapError(base, EINVARIANT, "cannot replace fragment %d", 7)
	assert.Equal(t, EINVARIANT, Code(err))
	assert.Equal(t, "cannot replace fragment 7", UserMessage(err))
	assert.True(t, errors.Is(err, base))
	assert.True(t, IsInvariantViolation(fmt.Errorf("layout: %w", err)))
	//
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(base))
	assert.False(t, IsInvariantViolation(ErrorWithCode(nil, ELAYOUT)))
	assert.Equal(t, "layout error", UserMessage(ErrorWithCode(nil, ELAYOUT)))
}
