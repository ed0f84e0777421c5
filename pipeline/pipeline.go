package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

type workerParams struct {
	stage int

	inCh  <-chan Payload
	outCh chan<- Payload
	errCh chan<- error
}

func (p *workerParams) StageIndex() int        { return p.stage }
func (p *workerParams) Input() <-chan Payload  { return p.inCh }
func (p *workerParams) Output() chan<- Payload { return p.outCh }
func (p *workerParams) Error() chan<- error    { return p.errCh }

// Pipeline chains a list of stages. The output of stage n is the input of
// stage n+1.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline that sends payloads through stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process pumps every payload of source through the pipeline into sink.
// It blocks until the source is drained, ctx expires or some stage fails;
// the first failure cancels the remaining stages. All reported errors are
// returned as a multierror.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	var wg sync.WaitGroup
	pCtx, cancel := context.WithCancel(ctx)

	// One slot per stage plus source and sink.
	errCh := make(chan error, len(p.stages)+2)
	stageCh := make([]chan Payload, len(p.stages)+1)
	for i := range stageCh {
		stageCh[i] = make(chan Payload)
	}

	for i := range p.stages {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			p.stages[idx].Run(pCtx, &workerParams{
				stage: idx,
				inCh:  stageCh[idx],
				outCh: stageCh[idx+1],
				errCh: errCh,
			})
			close(stageCh[idx+1])
		}(i)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceWorker(pCtx, source, stageCh[0], errCh)
		close(stageCh[0])
	}()
	go func() {
		defer wg.Done()
		sinkWorker(pCtx, sink, stageCh[len(stageCh)-1], errCh)
	}()

	go func() {
		wg.Wait()
		close(errCh)
		cancel()
	}()

	var err error
	for pErr := range errCh {
		err = multierror.Append(err, pErr)
		cancel()
	}
	return err
}

func sourceWorker(ctx context.Context, source Source, outCh chan<- Payload, errCh chan<- error) {
	for source.Next(ctx) {
		select {
		case outCh <- source.Payload():
		case <-ctx.Done():
			return
		}
	}

	if err := source.Error(); err != nil {
		maybeEmitError(xerrors.Errorf("pipeline source: %w", err), errCh)
	}
}

func sinkWorker(ctx context.Context, sink Sink, inCh <-chan Payload, errCh chan<- error) {
	for {
		select {
		case payload, ok := <-inCh:
			if !ok {
				return
			}
			if err := sink.Consume(ctx, payload); err != nil {
				maybeEmitError(xerrors.Errorf("pipeline sink: %w", err), errCh)
				return
			}
			payload.MarkAsProcessed()
		case <-ctx.Done():
			return
		}
	}
}

// maybeEmitError queues err unless the error channel is already full.
func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
