package errutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	sentinel := New(StatusConflict, "daily spin already claimed")

	var err error = sentinel
	require.ErrorIs(t, err, sentinel)

	wrapped := fmt.Errorf("spin: %w", err)
	require.ErrorIs(t, wrapped, sentinel)

	other := New(StatusConflict, "different message")
	require.NotErrorIs(t, err, other)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("db unavailable", WithErr(cause))
	require.ErrorIs(t, err, cause)
}

func TestHTTPStatusMapping(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, StatusBadRequest.HTTPStatus())
	require.Equal(t, http.StatusForbidden, StatusForbidden.HTTPStatus())
	require.Equal(t, http.StatusNotFound, StatusNotFound.HTTPStatus())
	require.Equal(t, http.StatusConflict, StatusConflict.HTTPStatus())
	require.Equal(t, http.StatusTooManyRequests, StatusTooManyRequests.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, StatusInternal.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, CoreStatus("BOGUS").HTTPStatus())
}
