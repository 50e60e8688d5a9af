package eventsource

// Exported aliases for testing internal functions from
// the eventsource_test package.

// ClassifyForTest exposes classify.
var ClassifyForTest = classify
