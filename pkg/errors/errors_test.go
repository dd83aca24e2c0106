package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("query: %w", ErrInvalidInput), http.StatusBadRequest},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("open: %w", ErrFormat), http.StatusServiceUnavailable},
		{ErrShardUnavailable, http.StatusServiceUnavailable},
		{ErrTimeout, http.StatusServiceUnavailable},
		{io.EOF, http.StatusInternalServerError},
		{New(ErrInternal, http.StatusTeapot, "custom"), http.StatusTeapot},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusCode(tc.err), "%v", tc.err)
	}
}

func TestWrapKeepsBothCauses(t *testing.T) {
	err := Wrap(ErrIO, io.ErrUnexpectedEOF, "reading bucket %d", 3)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "reading bucket 3")

	assert.NoError(t, Wrap(ErrIO, nil, "noop"))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", -1)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "invalid input: limit -1 out of range", err.Error())
}
