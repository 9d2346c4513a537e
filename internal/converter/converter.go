package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jo-hoe/certshowcase/internal/backend/commands"
	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
	"github.com/jo-hoe/certshowcase/internal/backend/database"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDPI keeps certificate text readable on a detail page.
	DefaultDPI = 100
	// AssetPrefix is the asset store key prefix of converted certificates.
	AssetPrefix = "certificates/"
	mimeJPEG    = "image/jpeg"
)

// Options controls where and how certificates are converted.
type Options struct {
	OutputDir   string
	DPI         int
	Concurrency int
	// Force converts even when the JPEG is newer than its PDF.
	Force bool
}

// Result describes one converted certificate.
type Result struct {
	ID         string
	PDFPath    string
	OutputPath string
	Text       string
	Size       int
	// Skipped is set when the JPEG on disk was reused instead of rasterized.
	Skipped bool
}

// Converter rasterizes certificate PDFs, post-processes the image with the
// configured command chain and publishes the JPEG to disk and, when a store
// is set, to the asset store.
type Converter struct {
	rasterizer Rasterizer
	invoker    *commandstructure.CommandInvoker
	toJPEG     commandstructure.Command
	store      database.DatabaseService
	text       func(path string) (string, error)
	opts       Options
}

// New creates a converter. invoker and store may be nil.
func New(rasterizer Rasterizer, invoker *commandstructure.CommandInvoker, store database.DatabaseService, opts Options) (*Converter, error) {
	if rasterizer == nil {
		return nil, errors.New("rasterizer cannot be nil")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if invoker == nil {
		invoker = commandstructure.NewCommandInvoker(nil)
	}
	toJPEG, err := commands.NewImageConverterCommand(map[string]any{"targetType": "jpeg"})
	if err != nil {
		return nil, fmt.Errorf("failed to create jpeg converter: %w", err)
	}

	return &Converter{
		rasterizer: rasterizer,
		invoker:    invoker,
		toJPEG:     toJPEG,
		store:      store,
		text:       PDFText,
		opts:       opts,
	}, nil
}

// CertificateID derives the certificate id from the PDF file name.
func CertificateID(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AssetKey is the asset store key of the converted certificate id.
func AssetKey(id string) string {
	return AssetPrefix + id + ".jpg"
}

// OutputPath is where the JPEG of the certificate id is written.
func (c *Converter) OutputPath(id string) string {
	return filepath.Join(c.opts.OutputDir, id+".jpg")
}

// Convert turns the first page of pdfPath into <OutputDir>/<id>.jpg.
func (c *Converter) Convert(ctx context.Context, pdfPath string) (Result, error) {
	id := CertificateID(pdfPath)
	result := Result{ID: id, PDFPath: pdfPath, OutputPath: c.OutputPath(id)}
	if id == "" {
		return result, fmt.Errorf("failed to derive certificate id from %q", pdfPath)
	}

	pdfInfo, err := os.Stat(pdfPath)
	if err != nil {
		return result, fmt.Errorf("failed to stat %s: %w", pdfPath, err)
	}
	if !c.opts.Force && upToDate(pdfInfo, result.OutputPath) {
		result.Skipped = true
		if c.stored(ctx, id) {
			slog.Debug("converter: certificate up to date", "id", id, "output", result.OutputPath)
			return result, nil
		}
		return c.republish(ctx, pdfPath, result)
	}

	tmpDir, err := os.MkdirTemp("", "certshowcase-*")
	if err != nil {
		return result, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	rasterPath := filepath.Join(tmpDir, "page.jpg")
	if err := c.rasterizer.Rasterize(ctx, pdfPath, rasterPath, c.opts.DPI); err != nil {
		return result, err
	}
	raw, err := os.ReadFile(rasterPath)
	if err != nil {
		return result, fmt.Errorf("failed to read rasterized page: %w", err)
	}

	processed, err := c.invoker.Execute(raw)
	if err != nil {
		return result, fmt.Errorf("failed to process certificate %s: %w", id, err)
	}
	if !commands.IsJPEG(processed) {
		processed, err = c.toJPEG.Execute(processed)
		if err != nil {
			return result, fmt.Errorf("failed to encode certificate %s as jpeg: %w", id, err)
		}
	}

	result.Text = c.extractText(id, pdfPath)

	if err := writeAtomic(result.OutputPath, processed); err != nil {
		return result, err
	}
	result.Size = len(processed)

	if err := c.publish(ctx, id, processed, result.Text); err != nil {
		return result, err
	}

	slog.Info("converter: certificate converted", "id", id, "output", result.OutputPath, "size_bytes", result.Size)
	return result, nil
}

// stored reports whether the asset store already holds the certificate. A
// converter without a store has nothing to publish.
func (c *Converter) stored(ctx context.Context, id string) bool {
	if c.store == nil {
		return true
	}
	_, err := c.store.GetAssetByKey(ctx, AssetKey(id))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		slog.Warn("converter: failed to look up certificate asset", "id", id, "error", err)
	}
	return err == nil
}

// republish stores a JPEG that is up to date on disk but missing from the
// asset store, for example after the store was reset.
func (c *Converter) republish(ctx context.Context, pdfPath string, result Result) (Result, error) {
	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", result.OutputPath, err)
	}
	result.Size = len(data)
	result.Text = c.extractText(result.ID, pdfPath)

	if err := c.publish(ctx, result.ID, data, result.Text); err != nil {
		return result, err
	}
	slog.Info("converter: certificate published from disk", "id", result.ID, "output", result.OutputPath)
	return result, nil
}

func (c *Converter) extractText(id, pdfPath string) string {
	text, err := c.text(pdfPath)
	if err != nil {
		slog.Warn("converter: no text extracted", "id", id, "error", err)
	}
	return text
}

func (c *Converter) publish(ctx context.Context, id string, data []byte, text string) error {
	if c.store == nil {
		return nil
	}
	_, err := c.store.PutAsset(ctx, &database.Asset{
		Key:         AssetKey(id),
		ContentType: mimeJPEG,
		Data:        data,
		Text:        text,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store certificate %s: %w", id, err)
	}
	return nil
}

// ConvertDir converts every *.pdf in dir with at most Concurrency
// conversions in flight. The first failure cancels the rest.
func (c *Converter) ConvertDir(ctx context.Context, dir string) ([]Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates in %s: %w", dir, err)
	}
	upper, err := filepath.Glob(filepath.Join(dir, "*.PDF"))
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates in %s: %w", dir, err)
	}
	paths = append(paths, upper...)
	sort.Strings(paths)

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			result, err := c.Convert(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", filepath.Base(path), err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("converter: directory converted", "dir", dir, "count", len(results))
	return results, nil
}

func upToDate(pdfInfo os.FileInfo, outputPath string) bool {
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return false
	}
	return !outInfo.ModTime().Before(pdfInfo.ModTime())
}

// writeAtomic keeps readers from ever seeing a half written JPEG.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
