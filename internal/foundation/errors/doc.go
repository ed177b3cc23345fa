// Package errors provides the classified error primitives used across specbuilder.
//
// Every failure that crosses a package boundary (configuration, rendering,
// filesystem, watching, serving) is wrapped in a ClassifiedError so that the
// CLI can pick an exit code and the HTTP layer can pick a status code without
// string matching.
//
// The category alone fixes the exit code (ErrorCategory.ExitCode) and the HTTP
// status (ErrorCategory.HTTPStatus). Severity picks the log level; the retry
// strategy tells callers whether repeating the operation can help.
//
// Example usage:
//
//	err := errors.WrapError(runErr, errors.CategoryRender, "renderer failed").
//		WithContext("renderer", "ecmarkup").
//		WithContext("source", "spec/index.html").
//		Build()
package errors
