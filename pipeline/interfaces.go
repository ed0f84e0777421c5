package pipeline

import "context"

// Payload is implemented by values that travel through a pipeline.
type Payload interface {
	// MarkAsProcessed is invoked once the payload reaches the sink or a
	// stage drops it.
	MarkAsProcessed()
}

// Processor transforms a payload. Returning a nil payload drops it.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner is implemented by the building blocks of a pipeline. Run
// must block until its input channel is closed, ctx expires or a payload
// fails to process.
type StageRunner interface {
	Run(context.Context, StageParams)
}

// StageParams wires a stage to its neighbors.
type StageParams interface {
	// StageIndex returns the position of the stage in the pipeline.
	StageIndex() int

	// Input returns the channel the stage reads payloads from.
	Input() <-chan Payload

	// Output returns the channel processed payloads are written to.
	Output() chan<- Payload

	// Error returns the channel for reporting processing errors.
	Error() chan<- error
}

// Source feeds payloads into a pipeline.
type Source interface {
	Next(context.Context) bool
	Payload() Payload
	Error() error
}

// Sink consumes the payloads leaving the last stage.
type Sink interface {
	Consume(context.Context, Payload) error
}
