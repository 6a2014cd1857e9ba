package common

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalAction       = errors.New("illegal action")
	ErrRuleIndexOutOfRange = errors.New("rule index out of range")
	ErrNoHistory           = errors.New("no history")
)

// EngineFault reports a broken invariant. It is raised with panic and is
// never one of the recoverable errors above.
type EngineFault struct {
	Reason string
}

func (f EngineFault) Error() string {
	return "engine fault: " + f.Reason
}

func fault(format string, args ...interface{}) {
	panic(EngineFault{Reason: fmt.Sprintf(format, args...)})
}

func illegal(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIllegalAction, fmt.Sprintf(format, args...))
}
