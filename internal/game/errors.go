package game

import "errors"

// ErrAborted is the cancellation cause of a match stopped by an operator
var ErrAborted = errors.New("match aborted")
