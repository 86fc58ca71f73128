// Package errors provides standardized error handling patterns for binfile components.
//
// # Overview
//
// The errors package implements a three-class error classification system: Transient
// (temporary, retryable), Invalid (bad input or configuration, non-retryable), and Fatal
// (unrecoverable, stop processing).
//
// Every failure of the write-binary-file pipeline is surfaced as a ClassifiedError that
// wraps one of the domain sentinels below, so callers can both branch on the class and
// identify the precise failure with errors.Is.
//
// # Domain Sentinels
//
//	ErrInvalidConfig, ErrMissingConfig  configuration errors, detected before document access
//	ErrQueryFailed                      malformed path query or ambiguous result
//	ErrAmbiguousMatch                   more than one match where exactly one was required (wraps ErrQueryFailed)
//	ErrNotFound                         mandatory query yielded no match
//	ErrUnsupportedResult                query evaluated to a type the resolver cannot interpret
//	ErrContentShape                     matched node is neither a leaf nor a container of a leaf
//	ErrIO                               opening, writing or decoding failed
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// Detail attaches the offending query string or path to a sentinel:
//
//	err := errors.WrapInvalid(
//	    errors.Detail(errors.ErrNotFound, "binary element %q matched nothing", query),
//	    "WriteBinaryFile", "Mediate", "locate binary node")
//
//	errors.Is(err, errors.ErrNotFound) // true
//	errors.IsInvalid(err)              // true
//
// # Metrics Labels
//
// Kind maps an error to a closed set of labels ("configuration", "query", "not_found",
// "unsupported_result", "content_shape", "io", "parse", "other") suitable for
// Prometheus counters.
package errors
