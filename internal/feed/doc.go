// Package feed pulls listings from MLS feeds and reconciles them with the
// listing store. A Flow upserts every listing the feed returns and removes
// the source's listings that the feed no longer carries.
package feed
