// Package service contains the admin use cases that sit between the HTTP
// handlers and the stores.
//
// Services receive their stores through constructor injection and depend only
// on the interfaces in internal/store. Operations that read and then write a
// listing run inside a single transaction so concurrent edits and feed updates
// cannot interleave between the check and the write.
//
// Authentication lives in the auth subpackage.
package service
