package dedupe

// Package dedupe provides the shared singleflight group used to deduplicate
// concurrent roster-size lookups against the character API. Using a
// centralized singleflight.Group ensures only one lookup runs at a time
// while other callers wait for the result.

import "golang.org/x/sync/singleflight"

// RosterGroup deduplicates roster-size lookups keyed by the API base URL.
var RosterGroup singleflight.Group
