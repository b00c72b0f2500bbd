package nodes

// Result is what a node execution produces. Output is stored on the run
// context under the node's own name. Forward becomes the current data seed
// for downstream nodes; when nil, Output is forwarded instead.
type Result struct {
	Output  any
	Forward any
}

// NewResult wraps a value that is both stored and forwarded.
func NewResult(output any) *Result {
	return &Result{Output: output}
}

// ForwardValue resolves the value downstream nodes see as their input.
func (r *Result) ForwardValue() any {
	if r == nil {
		return nil
	}

	if r.Forward != nil {
		return r.Forward
	}

	return r.Output
}

// Empty reports whether the node produced nothing to propagate. A trigger
// with an empty result does not enqueue its successors.
func (r *Result) Empty() bool {
	return r == nil || (r.Output == nil && r.Forward == nil)
}
