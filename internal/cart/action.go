package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Op is a per-row cart operation.
type Op string

// Row operations, as tagged on the rendered controls.
const (
	OpIncrement Op = "inc"
	OpDecrement Op = "dec"
	OpRemove    Op = "del"
)

// ErrInvalidAction is returned for an undecodable action token.
var ErrInvalidAction = errors.New("invalid cart action")

// Action identifies which row a gesture targets and what to do with it.
// Name, when set, is the row's item name at render time.
type Action struct {
	Op    Op
	Index int
	Name  string
}

// ParseAction decodes "op:index" or "op:index:name".
func ParseAction(token string) (Action, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) < 2 {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, token)
	}

	op := Op(parts[0])
	switch op {
	case OpIncrement, OpDecrement, OpRemove:
	default:
		return Action{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidAction, parts[0])
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Action{}, fmt.Errorf("%w: index %q", ErrInvalidAction, parts[1])
	}

	action := Action{Op: op, Index: index}
	if len(parts) == 3 {
		action.Name = parts[2]
	}
	return action, nil
}

// String encodes the action in the token form accepted by ParseAction.
func (a Action) String() string {
	if a.Name == "" {
		return fmt.Sprintf("%s:%d", a.Op, a.Index)
	}
	return fmt.Sprintf("%s:%d:%s", a.Op, a.Index, a.Name)
}
