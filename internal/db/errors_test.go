package db

import (
	"errors"
	"testing"
)

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Op: OpSearch, Err: cause}
	if err.Error() != "FT.SEARCH: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is must reach the cause")
	}
}
