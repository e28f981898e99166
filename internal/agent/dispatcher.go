package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
)

// Tools is the handler set the dispatcher routes to. *Toolbox implements it.
type Tools interface {
	GenerateStory(ctx context.Context, teacherID, topic string) Result
	ExplainConcept(ctx context.Context, teacherID, concept string) Result
	RequestWorksheetImage(ctx context.Context, teacherID, topic string) Result
	AnalyzeAttendance(ctx context.Context, teacherID, query string) Result
}

type Dispatcher struct {
	tools   Tools
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewDispatcher(tools Tools, m *metrics.Metrics, l *zap.Logger) *Dispatcher {
	return &Dispatcher{tools: tools, metrics: m, logger: logger.OrNop(l).Named("dispatcher")}
}

// Dispatch runs every call concurrently and returns one result per call, in
// call order. A failing or panicking handler yields a Failure and never
// affects its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, teacherID string, calls []ToolCall) []Result {
	results := make([]Result, len(calls))

	// Goroutines always return nil so the group never cancels siblings.
	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			results[i] = d.invoke(ctx, teacherID, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) invoke(ctx context.Context, teacherID string, call ToolCall) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked",
				zap.String("tool", string(call.Name)),
				zap.Any("panic", r),
			)
			res = Failure(fmt.Sprintf("tool %s panicked", call.Name))
		}
		d.metrics.IncToolResult(string(call.Name), res.Kind.String())
	}()

	arg := call.Arg()
	switch call.Name {
	case ToolGenerateStory:
		return d.tools.GenerateStory(ctx, teacherID, arg)
	case ToolExplainConcept:
		return d.tools.ExplainConcept(ctx, teacherID, arg)
	case ToolRequestWorksheetImage:
		return d.tools.RequestWorksheetImage(ctx, teacherID, arg)
	case ToolAnalyzeAttendance:
		return d.tools.AnalyzeAttendance(ctx, teacherID, arg)
	default:
		return Failure(fmt.Sprintf("unknown tool %q", call.Name))
	}
}
