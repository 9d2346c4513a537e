package wordcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jo-hoe/certshowcase/internal/nlp"
	"github.com/jo-hoe/certshowcase/internal/textnorm"
)

// DefaultOutputPath is where a written cloud goes when no path is given.
const DefaultOutputPath = "static/images/certs_wordcloud.png"

// GenerateOptions selects what happens with a rendered cloud.
type GenerateOptions struct {
	// Show encodes the PNG to ShowTo.
	Show   bool
	ShowTo io.Writer
	// Write stores the PNG at Path, or DefaultOutputPath when Path is empty.
	Write bool
	Path  string
}

// OutputPath is the file Write stores the PNG at.
func (o GenerateOptions) OutputPath() string {
	if o.Path == "" {
		return DefaultOutputPath
	}
	return o.Path
}

// Publish shows and writes an encoded cloud as the options ask. It lets
// callers holding a cached PNG honor the same options as Generate.
func (o GenerateOptions) Publish(data []byte) error {
	if o.Show {
		if o.ShowTo == nil {
			return errors.New("show requested without a writer")
		}
		if _, err := o.ShowTo.Write(data); err != nil {
			return fmt.Errorf("failed to show word cloud: %w", err)
		}
	}
	if o.Write {
		path := o.OutputPath()
		if err := writePNG(path, data); err != nil {
			return err
		}
		slog.Info("wordcloud: wrote image", "path", path)
	}
	return nil
}

// Pipeline turns raw course text into a word cloud.
type Pipeline struct {
	normalizer *textnorm.Normalizer
	extractors *nlp.Cache
	renderer   *Renderer
}

// NewPipeline wires the three stages together.
func NewPipeline(normalizer *textnorm.Normalizer, extractors *nlp.Cache, renderer *Renderer) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		extractors: extractors,
		renderer:   renderer,
	}
}

// NewDefaultPipeline uses the default tables and extraction methods. The
// entity method treats every merged multi-word token as an entity.
func NewDefaultPipeline(opts Options) (*Pipeline, error) {
	renderer, err := NewRenderer(opts)
	if err != nil {
		return nil, err
	}
	normalizer := textnorm.NewDefault()
	return NewPipeline(normalizer, nlp.NewCache(nil, ExtractorParams(normalizer, nil)), renderer), nil
}

// ExtractorParams adds the normalizer's merged tokens as entity terms to
// params, which may be nil.
func ExtractorParams(normalizer *textnorm.Normalizer, params map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(params)+1)
	for method, p := range params {
		out[method] = p
	}
	entityParams := make(map[string]any, len(out[nlp.MethodEntities])+1)
	for k, v := range out[nlp.MethodEntities] {
		entityParams[k] = v
	}
	entityParams["terms"] = normalizer.MergedTokens()
	out[nlp.MethodEntities] = entityParams
	return out
}

// Renderer returns the renderer used by the pipeline.
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Frequencies runs every stage up to counting.
func (p *Pipeline) Frequencies(ctx context.Context, text, method string) (Frequencies, error) {
	extractor, err := p.extractors.Get(method)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared := p.normalizer.Prepare(text)
	words := p.normalizer.ExpandAll(extractor.Extract(prepared))
	return Count(words), nil
}

// Generate renders text as a word cloud using the named extraction method.
func (p *Pipeline) Generate(ctx context.Context, text, method string, opts GenerateOptions) (*Cloud, error) {
	start := time.Now()

	freqs, err := p.Frequencies(ctx, text, method)
	if err != nil {
		return nil, err
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("failed to generate word cloud with method %s: %w", method, ErrEmptyFrequencies)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cloud, err := p.renderer.Render(freqs)
	if err != nil {
		return nil, fmt.Errorf("failed to render word cloud: %w", err)
	}

	if opts.Show || opts.Write {
		data, err := cloud.PNG()
		if err != nil {
			return nil, err
		}
		if err := opts.Publish(data); err != nil {
			return nil, err
		}
	}

	slog.Info("wordcloud: generated",
		"method", method,
		"distinct_words", len(freqs),
		"total_words", freqs.Total(),
		"placed", len(cloud.placements),
		"duration_ms", time.Since(start).Milliseconds())
	return cloud, nil
}
