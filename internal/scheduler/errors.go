package scheduler

import "errors"

// ErrInvalidState is returned when Update is handed a reviewed state whose
// numeric parameters are out of the algorithm's domain (non-finite or
// non-positive stability, non-finite difficulty). This is a programming
// error on the caller's side; the algorithm never silently corrects it.
var ErrInvalidState = errors.New("scheduler: invalid memory state")
