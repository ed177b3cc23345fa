// Package render turns the source document into the published artifact.
//
// The build task only depends on the Renderer interface. CommandRenderer delegates to an
// external tool (ecmarkup by default), MarkdownRenderer renders in-process with goldmark,
// and PassthroughRenderer copies the source unchanged.
package render
