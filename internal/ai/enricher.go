package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

// FallbackResult is returned whenever the model call fails or produces nothing.
const FallbackResult = "Other"

// Event describes one model call for the audit log.
type Event struct {
	UserID        string    `bson:"user_id"`
	PromptType    string    `bson:"prompt_type"`
	ContentLength int       `bson:"content_length"`
	DurationMS    int64     `bson:"duration_ms"`
	Fallback      bool      `bson:"fallback"`
	Error         string    `bson:"error,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

// Recorder persists Events. Implementations must not block the caller for long.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) {}

// Result is the outcome of a single enrichment prompt.
type Result struct {
	Text     string
	Fallback bool
}

type Enricher struct {
	gen      Generator
	prompts  *Prompts
	recorder Recorder
	timeout  time.Duration
	log      *zap.SugaredLogger
}

type EnricherOption func(*Enricher)

func WithRecorder(r Recorder) EnricherOption {
	return func(e *Enricher) {
		if r != nil {
			e.recorder = r
		}
	}
}

func WithTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) { e.timeout = d }
}

func WithLogger(l *zap.SugaredLogger) EnricherOption {
	return func(e *Enricher) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEnricher(gen Generator, prompts *Prompts, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		gen:      gen,
		prompts:  prompts,
		recorder: nopRecorder{},
		timeout:  60 * time.Second,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process runs one prompt over content. Model failures never surface as
// errors; they yield FallbackResult. The only error is ErrUnknownPromptType.
func (e *Enricher) Process(ctx context.Context, userID string, pt PromptType, content string) (Result, error) {
	text := utils.PlainText(content)
	prompt, err := e.prompts.Render(pt, text)
	if err != nil {
		return Result{}, err
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	out, genErr := e.gen.Generate(callCtx, prompt)
	out = strings.TrimSpace(out)

	res := Result{Text: normalize(pt, out)}
	if genErr != nil || out == "" {
		res = Result{Text: FallbackResult, Fallback: true}
	}

	ev := Event{
		UserID:        userID,
		PromptType:    string(pt),
		ContentLength: len(text),
		DurationMS:    time.Since(start).Milliseconds(),
		Fallback:      res.Fallback,
		CreatedAt:     start.UTC(),
	}
	if genErr != nil {
		ev.Error = genErr.Error()
		e.log.Warnw("ai generation failed, using fallback",
			"promptType", pt,
			"userID", userID,
			"error", genErr,
		)
	}
	e.recorder.Record(ctx, ev)

	return res, nil
}

// EnrichAll runs every prompt type concurrently. Fields whose prompt fell
// back are left empty except category, which keeps the fallback label.
func (e *Enricher) EnrichAll(ctx context.Context, userID, content string) (models.Enrichment, error) {
	results := make([]Result, len(PromptTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, pt := range PromptTypes {
		i, pt := i, pt
		g.Go(func() error {
			r, err := e.Process(gctx, userID, pt, content)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return models.Enrichment{}, err
	}

	pick := func(r Result) string {
		if r.Fallback {
			return ""
		}
		return r.Text
	}
	return models.Enrichment{
		Category:    results[0].Text,
		Sentiment:   pick(results[1]),
		Summary:     pick(results[2]),
		Suggestions: pick(results[3]),
	}, nil
}

// normalize maps label-style replies ("work.", "POSITIVE") to their canonical
// label. Anything else is returned as the model wrote it.
func normalize(pt PromptType, out string) string {
	var labels []string
	switch pt {
	case PromptCategory:
		labels = models.Categories
	case PromptSentiment:
		labels = models.Sentiments
	default:
		return out
	}
	if l := models.CanonicalLabel(out, labels); l != "" {
		return l
	}
	return out
}
