// Package eventsource fetches the most recent events of a CloudFormation
// stack, newest first. Source is the strategy consumed by the tailer;
// CloudFormation implements it over the AWS SDK and Retrying decorates any
// Source with the bounded throttling backoff. Failures are classified into
// ErrThrottled, ErrNotFound, ErrTransient and ErrFatal.
package eventsource
