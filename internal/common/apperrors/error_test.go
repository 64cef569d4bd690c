package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("TestError", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrAnotherErrMsg := ErrAnotherErr.Msg("another error msg")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErrMsg)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErrMsg)

		err := errors.New("error")
		ErrWrappedErr = ErrFirstLevel.Err(err)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrAnotherGoErr := fmt.Errorf("another error")
		ErrYetAnotherGoErr := fmt.Errorf("yet another error")
		ErrWrappedGoErr := ErrFirstLevel.Err(ErrAnotherGoErr, ErrYetAnotherGoErr)
		assert.Equal(t, "first level", ErrWrappedGoErr.Error())
		assert.ErrorIs(t, ErrWrappedGoErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedGoErr, ErrAnotherGoErr)
		assert.ErrorIs(t, ErrWrappedGoErr, ErrYetAnotherGoErr)
	})

	t.Run("TestStatusCode", func(t *testing.T) {
		ErrRequestFailed := New("request failed").SetStatusCode(http.StatusBadGateway)
		assert.Equal(t, http.StatusBadGateway, ErrRequestFailed.StatusCode())

		derived := ErrRequestFailed.New("upstream rejected the ticket")
		assert.Equal(t, http.StatusBadGateway, derived.StatusCode())

		overridden := derived.SetStatusCode(http.StatusUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, overridden.StatusCode())
		assert.Equal(t, http.StatusBadGateway, derived.StatusCode())
		assert.ErrorIs(t, overridden, ErrRequestFailed)
	})
}
