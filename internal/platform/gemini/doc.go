// Package gemini writes marketing descriptions for listings that arrive from
// a feed without one, using Google's Gemini API through the genai client.
//
// Transient API failures are retried with exponential backoff and jitter.
// Callers treat a failed description as non-fatal.
package gemini
