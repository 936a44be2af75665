// Package errors provides structured error types for the cluster validator.
//
// Every failure a check can produce is classified with an ErrorCode. The
// pipeline uses the code to decide whether another attempt is worthwhile:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeResourceNotReady,
//	    "probe pod did not become ready",
//	    ctx.Err(),
//	    map[string]any{
//	        "pod":       name,
//	        "namespace": namespace,
//	    },
//	)
//
//	if errors.IsRetryable(errors.CodeOf(err)) {
//	    // schedule another attempt
//	}
package errors
