// Package tailer follows an in-flight CloudFormation stack operation. A Tailer
// polls a stack's event history, hides events of previous executions, renders
// new events oldest first, starts one concurrent tail per nested stack it
// discovers, and reports the outcome once the stack's own terminal event is
// seen and every nested tail has finished.
//
// The main entry point is Tailer.Tail, which is safe to call concurrently
// and is also how nested stacks are followed.
package tailer
