package config

// FromLookupForTest exposes fromLookup.
var FromLookupForTest = fromLookup
