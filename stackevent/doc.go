// Package stackevent models CloudFormation stack events and classifies the
// stack-level events that end an execution. It has no knowledge of how events
// are fetched or displayed.
package stackevent
