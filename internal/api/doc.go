// Package api exposes the answer and ring endpoints over HTTP. Handlers decode
// and validate requests, call the answer and progress services, and translate
// service errors to status codes through MapErrorToStatusCode.
package api
