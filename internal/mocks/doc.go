// Package mocks provides in-memory test doubles for the store interfaces
// and the task scope, shared by tests across packages.
package mocks
