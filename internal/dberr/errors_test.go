package dberr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchError_Error(t *testing.T) {
	t.Parallel()

	t.Run("object-scoped error includes doid", func(t *testing.T) {
		t.Parallel()
		err := &DispatchError{
			Code:    ErrObjectNotFound,
			Message: "database reports object does not exist",
			DOID:    9002,
		}

		assert.Contains(t, err.Error(), "ObjectNotFound")
		assert.Contains(t, err.Error(), "9002")
	})

	t.Run("non-object-scoped error omits doid", func(t *testing.T) {
		t.Parallel()
		err := &DispatchError{
			Code:    ErrMalformedMessage,
			Message: "truncated payload",
		}

		assert.Contains(t, err.Error(), "MalformedMessage")
		assert.Contains(t, err.Error(), "truncated payload")
		assert.NotContains(t, err.Error(), "doid=")
	})
}

func TestErrorFactories(t *testing.T) {
	t.Parallel()

	t.Run("NewUnknownFieldError", func(t *testing.T) {
		t.Parallel()
		err := NewUnknownFieldError(9001, 42)
		assert.Equal(t, ErrUnknownField, err.Code)
		assert.Equal(t, uint32(9001), err.DOID)
	})

	t.Run("NewStaleContextError", func(t *testing.T) {
		t.Parallel()
		err := NewStaleContextError(17)
		assert.Equal(t, ErrStaleContext, err.Code)
		assert.Equal(t, uint32(0), err.DOID)
	})

	t.Run("NewBusSendFailedError wraps cause", func(t *testing.T) {
		t.Parallel()
		cause := assert.AnError
		err := NewBusSendFailedError(9001, cause)
		assert.Equal(t, ErrBusSendFailed, err.Code)
		assert.Contains(t, err.Message, cause.Error())
	})

	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		t.Parallel()
		err := NewObjectNotFoundError(9002)
		assert.Equal(t, ErrObjectNotFound, err.Code)
		assert.Equal(t, uint32(9002), err.DOID)
	})
}

func TestCode_String(t *testing.T) {
	t.Parallel()

	cases := map[Code]string{
		ErrUnknownField:       "UnknownField",
		ErrUnknownClass:       "UnknownClass",
		ErrSchemaInconsistent: "SchemaInconsistent",
		ErrStaleContext:       "StaleContext",
		ErrOutOfRange:         "OutOfRange",
		ErrMalformedMessage:   "MalformedMessage",
		ErrObjectNotFound:     "ObjectNotFound",
		ErrNotActive:          "NotActive",
		ErrBusSendFailed:      "BusSendFailed",
	}

	for code, want := range cases {
		assert.Equal(t, want, code.String())
	}
}
