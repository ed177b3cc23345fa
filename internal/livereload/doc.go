// Package livereload pushes reload notifications to browsers over Server-Sent Events.
//
// A Hub serves the /livereload event stream; Script serves the client that reconnects
// on errors and reloads the page when a new token arrives; Inject adds the client to
// HTML responses of the static server.
package livereload
