package tailer

// Exported aliases for testing internal functions from
// the tailer_test package.

// InitializeForTest exposes Tailer.initialize.
var InitializeForTest = (*Tailer).initialize

// PollForTest exposes Tailer.poll.
var PollForTest = (*Tailer).poll

// DrainForTest exposes Tailer.drain.
var DrainForTest = (*Tailer).drain
