package models

import "errors"

// Error kinds of the pipeline taxonomy. Components wrap these sentinels so
// callers can branch with errors.Is without inspecting messages.
var (
	// ErrTransientStore marks store failures worth retrying with backoff.
	ErrTransientStore = errors.New("transient store error")

	// ErrPermanentStore marks schema or auth failures; the affected task
	// aborts but the worker loop continues.
	ErrPermanentStore = errors.New("permanent store error")

	// ErrMalformedInput marks articles missing required fields or carrying
	// unparseable timestamps; skipped without retry.
	ErrMalformedInput = errors.New("malformed input")

	// ErrRuleMisconfigured marks detector rules referencing unknown
	// indicators; logged once, remaining rules continue.
	ErrRuleMisconfigured = errors.New("rule misconfiguration")

	// ErrNotFound is returned by caches and stores on a miss.
	ErrNotFound = errors.New("not found")
)
