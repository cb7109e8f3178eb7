package sentiment

import (
	"context"
	"unicode/utf8"

	"metals-pulse/internal/classifier"
	"metals-pulse/internal/domain"
	"metals-pulse/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	StageSocial = "reddit"

	defaultPostsPerForum = 10
	maxSocialItems       = 10
	minPostLength        = 10
)

var DefaultForums = []string{"Gold", "Silverbugs", "WallStreetSilver", "Platinum"}

// SocialResult carries the capped item list and the mean score of every
// classified post, including those past the cap.
type SocialResult struct {
	Items []domain.ScoredItem
	Score int
}

type SocialSource struct {
	forums        []string
	postsPerForum int
	reader        ForumReader
	classifier    *classifier.Classifier
	tracer        trace.Tracer
}

func NewSocialSource(reader ForumReader, forums []string, postsPerForum int, c *classifier.Classifier, tracer trace.Tracer) *SocialSource {
	if len(forums) == 0 {
		forums = DefaultForums
	}
	if postsPerForum <= 0 {
		postsPerForum = defaultPostsPerForum
	}
	return &SocialSource{
		forums:        append([]string(nil), forums...),
		postsPerForum: postsPerForum,
		reader:        reader,
		classifier:    c,
		tracer:        tracer,
	}
}

func (s *SocialSource) Name() string { return StageSocial }

func (s *SocialSource) Forums() []string {
	return append([]string(nil), s.forums...)
}

func (s *SocialSource) Fetch(ctx context.Context) ([]domain.ScoredItem, error) {
	return s.Collect(ctx).Items, nil
}

// Collect reads forums one after another. A failing forum is skipped.
func (s *SocialSource) Collect(ctx context.Context) SocialResult {
	ctx, span := s.tracer.Start(ctx, "sentiment.social.collect")
	defer span.End()

	if s.reader == nil {
		return SocialResult{}
	}

	var (
		items = make([]domain.ScoredItem, 0, maxSocialItems)
		total int
		count int
	)
	for _, forum := range s.forums {
		if ctx.Err() != nil {
			break
		}
		posts, err := s.reader.FetchHot(ctx, forum, s.postsPerForum)
		if err != nil {
			logger.Warn("reddit forum fetch failed", zap.String("forum", forum), zap.Error(err))
			continue
		}
		for _, post := range posts {
			if post.Title == "" || utf8.RuneCountInString(post.Title+" "+post.Excerpt) < minPostLength {
				continue
			}
			post.Publisher = "r/" + forum
			scored := scoreContent(s.classifier, "reddit-"+post.SourceItemID, post)
			total += scored.Score
			count++
			if len(items) < maxSocialItems {
				items = append(items, scored)
			}
		}
	}

	res := SocialResult{Items: items}
	if count > 0 {
		res.Score = domain.ClampScore(roundHalfUp(float64(total) / float64(count)))
	}
	span.SetAttributes(
		attribute.Int("sentiment.social.posts", count),
		attribute.Int("sentiment.social.score", res.Score),
	)
	return res
}
