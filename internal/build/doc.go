// Package build implements the clean and build tasks: emptying the output directory and
// publishing the rendered source document (plus static assets) into it.
package build
