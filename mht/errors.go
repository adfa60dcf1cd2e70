package mht

import (
	"fmt"

	"github.com/trackforest/mht-go/graph"
)

// InputShapeError reports a recoverable per-frame input problem: a
// detection box outside the frame, or an auxiliary-tracker map missing an
// expected live track id. The offending item is dropped for this frame;
// processing of the remaining items continues.
type InputShapeError struct {
	Frame  int
	Detail string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("mht: input shape error at frame %d: %s", e.Frame, e.Detail)
}

func newInputShapeError(frame int, detail string) *InputShapeError {
	return &InputShapeError{Frame: frame, Detail: detail}
}

// ErrMWISInfeasible documents that MWIS selection cannot fail: the empty
// independent set is always valid. It is declared for API completeness and
// is never actually returned by Engine.Step.
var ErrMWISInfeasible = graph.ErrInfeasible
