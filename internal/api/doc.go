// Package api handles incoming HTTP requests for the admin back office:
// routing, request validation and response formatting. Handlers translate
// HTTP concerns into calls on the listing, auth and event services; feed
// updates are only queued here and run on the background worker.
package api
