package prefs

// Executor runs a write off the tick path. The engine never waits on the
// task; its outcome is picked up by a later Tick.
type Executor interface {
	Go(task func())
}

// ExecutorFunc adapts a function to Executor, e.g. to submit writes to a
// host worker pool.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Go(task func()) {
	f(task)
}

// GoroutineExecutor starts one goroutine per write. It is the default.
type GoroutineExecutor struct{}

func (GoroutineExecutor) Go(task func()) {
	go task()
}

// InlineExecutor runs the write before Go returns. It suits hosts without
// background threads; completion is still observed on the next Tick.
type InlineExecutor struct{}

func (InlineExecutor) Go(task func()) {
	task()
}
