package future

// Executor runs tasks on some execution context. Implementations must be safe
// for concurrent Execute calls.
type Executor interface {
	// Execute schedules the task. It returns an error if the task cannot be
	// accepted; it must not wait for the task to finish.
	Execute(task func()) error
}

// GoExecutor runs every task on a fresh goroutine.
type GoExecutor struct{}

// Execute starts the task on its own goroutine.
func (GoExecutor) Execute(task func()) error {
	go task()
	return nil
}

// InlineExecutor runs tasks synchronously on the caller's goroutine.
// Intended for tests that need deterministic scheduling.
type InlineExecutor struct{}

// Execute runs the task before returning.
func (InlineExecutor) Execute(task func()) error {
	task()
	return nil
}
