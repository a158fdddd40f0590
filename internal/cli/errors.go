package cli

import (
	"errors"
	"net/http"

	"github.com/braude/garage/pkg/types"
)

// exitErr attaches an exit code to an error.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

func userError(err error) error { return &exitErr{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitErr{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. API rejections (4xx) are user
// errors; unreachable servers and 5xx are system errors.
func exitCode(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	var rf *types.RequestFailed
	if errors.As(err, &rf) {
		if rf.StatusCode == 0 || rf.StatusCode >= http.StatusInternalServerError {
			return exitSysError
		}
		return exitUserError
	}
	return exitUserError
}
