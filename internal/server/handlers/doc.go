// Package handlers provides the monitoring HTTP handlers of the preview server.
package handlers
