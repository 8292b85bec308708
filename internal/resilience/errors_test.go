package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient_TransientError(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError(errors.New("rate limited"), 429)))
}

func TestIsTransient_WrappedInChain(t *testing.T) {
	err := fmt.Errorf("review call: %w", NewTransientError(errors.New("overloaded"), 529))
	assert.True(t, IsTransient(err))
}

func TestIsTransient_NetworkTimeout(t *testing.T) {
	var err error = &net.OpError{Op: "dial", Err: &timeoutError{}}
	assert.True(t, IsTransient(err))
}

func TestIsTransient_ConnectionErrors(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNRESET)))
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNABORTED)))
}

func TestIsTransient_PlainErrorIsNot(t *testing.T) {
	assert.False(t, IsTransient(errors.New("invalid request")))
	assert.False(t, IsTransient(nil))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	te := NewTransientError(inner, 503)
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "boom", te.Error())
	assert.Equal(t, 503, te.StatusCode)
}

// timeoutError satisfies net.Error with Timeout true.
type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
