// Package future provides asynchronous task handles and the executors that run them.
package future

import "errors"

var (
	// ErrPoolClosed indicates that the worker pool no longer accepts tasks.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrQueueFull indicates that the worker pool task queue is full.
	ErrQueueFull = errors.New("worker pool queue full")
	// ErrTaskPanicked indicates that a task panicked while computing a result.
	ErrTaskPanicked = errors.New("task panicked")
)
