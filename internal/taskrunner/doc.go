// Package taskrunner provides a registry of named tasks with gulp-style composition.
//
// Tasks declare dependencies that run first, in order, at most once per Run. Composite
// actions built with Series and Parallel share the same per-run state, so a task reached
// twice through different paths still executes once.
package taskrunner
