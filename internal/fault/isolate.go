// Package fault contains the per-unit failure isolation used across the
// enrichment pipeline: a fallible operation on a single principal or policy
// resolves to its documented degraded value instead of failing the batch.
package fault

// Isolate runs op and returns its value. When op fails, the degrade function
// maps the error to the unit's fallback value; the error never propagates.
func Isolate[T any](degrade func(error) T, op func() (T, error)) T {
	v, err := op()
	if err != nil {
		return degrade(err)
	}
	return v
}

// IsolateValue is Isolate with a fixed fallback for callers that do not need
// the error to shape the degraded value.
func IsolateValue[T any](fallback T, op func() (T, error)) T {
	return Isolate(func(error) T { return fallback }, op)
}
