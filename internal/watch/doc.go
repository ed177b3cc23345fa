// Package watch observes source paths and turns bursts of filesystem changes into
// single, serialized rebuilds.
//
// Paths are doublestar globs such as "spec/**/*". The static prefix of each glob is watched
// recursively with fsnotify (or polled on a gocron schedule where inotify is unavailable);
// events are filtered by the glob and by ignore rules, debounced, and handed to a
// single-flight Worker.
package watch
