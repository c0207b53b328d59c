package newsmd_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/newsmd"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := newsmd.Errorf(newsmd.ENOTITLE, "title marker %q not found", ".post-full-title")

	assert.Equal(t, newsmd.ENOTITLE, newsmd.ErrorCode(err))
	assert.Equal(t, "title marker \".post-full-title\" not found", newsmd.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, newsmd.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("converting: %w", newsmd.Errorf(newsmd.ENOMATCH, "nothing matched"))

	assert.Equal(t, newsmd.ENOMATCH, newsmd.ErrorCode(err))
	assert.Equal(t, "nothing matched", newsmd.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, newsmd.EINTERNAL, newsmd.ErrorCode(err))
	assert.Equal(t, "Internal error.", newsmd.ErrorMessage(err))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, newsmd.ErrorMessage(nil))
}
