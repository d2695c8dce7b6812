package translation

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
)

// DefaultBatchSize is the number of fragments sent per request.
const DefaultBatchSize = 10

// DefaultTargetLanguage is what the chapter page asks for.
const DefaultTargetLanguage = "urdu"

// ErrServiceUnavailable is returned when the translation endpoint fails or
// cannot be reached. The pass stops at the failing batch.
var ErrServiceUnavailable = errors.New("translation service unavailable")

// FallbackMessage is shown to readers when a pass fails.
const FallbackMessage = "براہ کرم نوٹ کریں: فی الوقت ترجمہ کی سروس دستیاب نہیں ہے۔"

// Request is the body of POST /api/translate.
type Request struct {
	Texts          []string `json:"texts"`
	TargetLanguage string   `json:"targetLanguage,omitempty"`
	Chapter        string   `json:"chapter,omitempty"`
	Title          string   `json:"title,omitempty"`
}

// Response is the body returned by POST /api/translate.
type Response struct {
	Translations   []string `json:"translations"`
	SourceLanguage string   `json:"sourceLanguage"`
	TargetLanguage string   `json:"targetLanguage"`
	Chapter        string   `json:"chapter,omitempty"`
	Title          string   `json:"title,omitempty"`
}

// Requester sends one batch to a translation endpoint. Both the remote
// HTTP client and the in-process Service implement it.
type Requester interface {
	Translate(ctx context.Context, req Request) (*Response, error)
}

// Meta travels with every batch request.
type Meta struct {
	TargetLanguage string
	Chapter        string
	Title          string
}

// Progress reports what a pass did, including a failed one.
type Progress struct {
	Fragments      int `json:"fragments"`
	Batches        int `json:"batches"`
	AppliedBatches int `json:"appliedBatches"`
	Rewritten      int `json:"rewritten"`
	Skipped        int `json:"skipped"`
}

// Partition splits fragments into consecutive batches of at most size.
func Partition(fragments []Fragment, size int) [][]Fragment {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]Fragment
	for start := 0; start < len(fragments); start += size {
		end := min(start+size, len(fragments))
		batches = append(batches, fragments[start:end])
	}
	return batches
}

// Driver runs translation passes. Batches are sent strictly one after the
// other, so the i-th translation of a response always belongs to the i-th
// fragment of that batch.
type Driver struct {
	requester Requester
	batchSize int
	tracer    trace.Tracer
	log       *logging.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithLogger sets the driver logger.
func WithLogger(l *logging.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDriver creates a Driver sending batches through requester.
func NewDriver(requester Requester, opts ...DriverOption) *Driver {
	d := &Driver{
		requester: requester,
		batchSize: DefaultBatchSize,
		tracer:    otel.Tracer("bookcompanion/translation"),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BatchSize returns the configured batch size.
func (d *Driver) BatchSize() int {
	return d.batchSize
}

// Run translates fragments, which must have been extracted from root, and
// rewrites root in place batch by batch. On failure the batches already
// applied stay applied and the returned error wraps ErrServiceUnavailable.
func (d *Driver) Run(ctx context.Context, root *html.Node, fragments []Fragment, meta Meta) (Progress, error) {
	batches := Partition(fragments, d.batchSize)
	progress := Progress{Fragments: len(fragments), Batches: len(batches)}
	if len(batches) == 0 {
		return progress, nil
	}

	ctx, span := d.tracer.Start(ctx, "translation.pass", trace.WithAttributes(
		attribute.Int("translation.fragments", len(fragments)),
		attribute.Int("translation.batches", len(batches)),
		attribute.String("translation.target", meta.TargetLanguage),
		attribute.String("translation.chapter", meta.Chapter),
	))
	defer span.End()

	elements := IndexElements(root)
	for i, batch := range batches {
		if err := d.runBatch(ctx, elements, batch, i, meta, &progress); err != nil {
			d.log.Warn("translation pass aborted",
				"chapter", meta.Chapter,
				"batch", i+1,
				"batches", len(batches),
				"applied", progress.AppliedBatches,
				"error", err,
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch failed")
			return progress, err
		}
	}

	span.SetAttributes(
		attribute.Int("translation.rewritten", progress.Rewritten),
		attribute.Int("translation.skipped", progress.Skipped),
	)
	d.log.Debug("translation pass complete",
		"chapter", meta.Chapter,
		"fragments", progress.Fragments,
		"rewritten", progress.Rewritten,
		"skipped", progress.Skipped,
	)
	return progress, nil
}

func (d *Driver) runBatch(ctx context.Context, elements []*html.Node, batch []Fragment, index int, meta Meta, progress *Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := d.tracer.Start(ctx, "translation.batch", trace.WithAttributes(
		attribute.Int("translation.batch.index", index),
		attribute.Int("translation.batch.size", len(batch)),
	))
	defer span.End()

	texts := make([]string, len(batch))
	for i, f := range batch {
		texts[i] = f.Text
	}

	resp, err := d.requester.Translate(ctx, Request{
		Texts:          texts,
		TargetLanguage: meta.TargetLanguage,
		Chapter:        meta.Chapter,
		Title:          meta.Title,
	})
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ErrServiceUnavailable) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		return fmt.Errorf("batch %d: %w", index+1, err)
	}

	// A short or long response only affects this batch; the cursor into
	// fragments always advances by len(batch).
	n := min(len(batch), len(resp.Translations))
	rewritten := 0
	for i := 0; i < n; i++ {
		f := batch[i]
		if f.Owner < 0 || f.Owner >= len(elements) {
			continue
		}
		if replaceText(elements[f.Owner], f.Text, resp.Translations[i]) {
			rewritten++
		}
	}
	if n != len(batch) {
		d.log.Warn("translation count mismatch", "batch", index+1, "sent", len(batch), "received", len(resp.Translations))
	}

	progress.AppliedBatches++
	progress.Rewritten += rewritten
	progress.Skipped += len(batch) - rewritten
	span.SetAttributes(attribute.Int("translation.batch.rewritten", rewritten))
	return nil
}
