package errorx

import "fmt"

// Unknown is returned to the client whenever the real cause is an internal
// fault that must not leak outside. The cause is expected to be logged at the
// place the fault was detected.
var Unknown = Error{Code: 100000, Message: "Request failed"}

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, args ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e Error) Error() string {
	return e.Message
}
