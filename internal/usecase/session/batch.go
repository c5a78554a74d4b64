package session

// Batch tracks one preview batch launched by TextChanged.
type Batch struct {
	revision  uint64
	input     string
	done      chan struct{}
	committed bool
}

func newBatch(rev uint64, input string) *Batch {
	return &Batch{revision: rev, input: input, done: make(chan struct{})}
}

func finishedBatch(rev uint64, input string) *Batch {
	b := newBatch(rev, input)
	b.committed = true
	close(b.done)
	return b
}

// Revision returns the session revision the batch was launched for.
func (b *Batch) Revision() uint64 { return b.revision }

// Input returns the input the batch probes.
func (b *Batch) Input() string { return b.input }

// Done is closed once the batch has settled, published or not.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Committed reports whether the batch published its preview. Valid after Done.
func (b *Batch) Committed() bool {
	<-b.done
	return b.committed
}
