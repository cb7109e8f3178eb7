package job

import (
	"context"
	"time"

	"metals-pulse/internal/sentiment"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SentimentRunner interface {
	GetSentiment(ctx context.Context) sentiment.Result
}

// SentimentJob recomputes the index on a schedule so chat and agent
// front-ends can serve the last result without waiting on every source.
type SentimentJob struct {
	tracer       trace.Tracer
	runner       SentimentRunner
	pollInterval time.Duration
}

func NewSentimentJob(tracer trace.Tracer, runner SentimentRunner, pollInterval time.Duration) *SentimentJob {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Minute
	}
	return &SentimentJob{tracer: tracer, runner: runner, pollInterval: pollInterval}
}

func (j *SentimentJob) Start(ctx context.Context) {
	if j.runner == nil {
		logger.Warn("sentiment job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *SentimentJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "sentiment-job.run-once")
	defer span.End()

	res := j.runner.GetSentiment(ctx)
	logger.Debug("sentiment refreshed",
		zap.Int("score", res.Index.Score),
		zap.String("news_stage", res.NewsStage),
	)
}
