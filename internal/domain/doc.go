// Package domain contains the brokerage's core entities (listings, events and
// settings) together with their validation rules. It has no knowledge of
// storage or transport.
package domain
