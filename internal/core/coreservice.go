package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
	"github.com/jo-hoe/certshowcase/internal/backend/database"
	"github.com/jo-hoe/certshowcase/internal/certificates"
	"github.com/jo-hoe/certshowcase/internal/converter"
	"github.com/jo-hoe/certshowcase/internal/nlp"
	"github.com/jo-hoe/certshowcase/internal/textnorm"
	"github.com/jo-hoe/certshowcase/internal/wordcloud"
)

const (
	// SourceCertificateText uses the text found in converted certificate PDFs.
	SourceCertificateText = "certificate_text"
	mimePNG               = "image/png"
	wordCloudAssetPrefix  = "wordcloud/"
)

// ErrNotFound is returned for certificates and images that do not exist.
var ErrNotFound = errors.New("not found")

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	source          *certificates.Source
	pipeline        *wordcloud.Pipeline
	metrics         *Metrics
	renders         singleflight.Group
	newRasterizer   func(binary string) (converter.Rasterizer, error)

	indexMu  sync.Mutex
	indexPNG []byte
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	opts, err := config.WordCloud.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid word cloud options: %w", err)
	}
	renderer, err := wordcloud.NewRenderer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create word cloud renderer: %w", err)
	}
	normalizer := textnorm.NewDefault()
	pipeline := wordcloud.NewPipeline(normalizer,
		nlp.NewCache(nil, wordcloud.ExtractorParams(normalizer, config.WordCloud.Methods)), renderer)

	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}

	return &CoreService{
		config:          config,
		databaseService: databaseService,
		source:          certificates.NewSource(config.DataPath),
		pipeline:        pipeline,
		metrics:         NewMetrics(),
		newRasterizer: func(binary string) (converter.Rasterizer, error) {
			return converter.NewGhostscript(binary)
		},
	}, nil
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

func (service *CoreService) Metrics() *Metrics {
	return service.metrics
}

// Certificates returns every course of the data file in file order.
func (service *CoreService) Certificates() ([]certificates.Certificate, error) {
	table, err := service.source.Table()
	if err != nil {
		return nil, err
	}
	return table.Records(), nil
}

// Certificate returns the course at index. A missing index is ErrNotFound.
func (service *CoreService) Certificate(index int) (certificates.Certificate, error) {
	table, err := service.source.Table()
	if err != nil {
		return certificates.Certificate{}, err
	}
	record, err := table.Record(index)
	if err != nil {
		return certificates.Certificate{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return record, nil
}

// TextString joins the values of a data source into one text.
func (service *CoreService) TextString(ctx context.Context, source string) (string, error) {
	if source == SourceCertificateText {
		return service.certificateText(ctx)
	}
	table, err := service.source.Table()
	if err != nil {
		return "", err
	}
	return table.TextString(source)
}

func (service *CoreService) certificateText(ctx context.Context) (string, error) {
	assets, err := service.databaseService.ListAssets(ctx, converter.AssetPrefix)
	if err != nil {
		return "", fmt.Errorf("failed to list certificate assets: %w", err)
	}
	values := make([]string, 0, len(assets))
	for _, asset := range assets {
		values = append(values, asset.Text)
	}
	return certificates.JoinText(values), nil
}

func wordCloudAssetKey(source, method string) string {
	return wordCloudAssetPrefix + source + "/" + method + ".png"
}

// WordCloud returns the PNG word cloud of a data source and shows or writes
// it as opts asks. A rendered cloud is kept in the asset store together with
// its input text and reused for as long as the text does not change.
func (service *CoreService) WordCloud(ctx context.Context, source, method string, opts wordcloud.GenerateOptions) ([]byte, error) {
	if !nlp.DefaultRegistry.IsRegistered(method) {
		return nil, fmt.Errorf("%w: %s", nlp.ErrUnknownMethod, method)
	}
	text, err := service.TextString(ctx, source)
	if err != nil {
		return nil, err
	}

	key := wordCloudAssetKey(source, method)
	if asset, err := service.databaseService.GetAssetByKey(ctx, key); err == nil && asset.Text == text {
		service.metrics.WordCloudRenders.WithLabelValues(method, "hit").Inc()
		if err := opts.Publish(asset.Data); err != nil {
			return nil, err
		}
		return asset.Data, nil
	} else if err != nil && !errors.Is(err, database.ErrNotFound) {
		slog.Warn("CoreService: failed to read cached word cloud", "key", key, "error", err)
	}

	// callers share the render, so one of them going away must not cancel it
	renderCtx := context.WithoutCancel(ctx)
	result, err, _ := service.renders.Do(key+"\x00"+text, func() (any, error) {
		start := time.Now()
		cloud, err := service.pipeline.Generate(renderCtx, text, method, wordcloud.GenerateOptions{})
		if err != nil {
			return nil, err
		}
		data, err := cloud.PNG()
		if err != nil {
			return nil, err
		}
		service.metrics.WordCloudDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

		_, err = service.databaseService.PutAsset(renderCtx, &database.Asset{
			Key:         key,
			ContentType: mimePNG,
			Data:        data,
			Text:        text,
		})
		if err != nil {
			slog.Warn("CoreService: failed to cache word cloud", "key", key, "error", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	service.metrics.WordCloudRenders.WithLabelValues(method, "miss").Inc()
	data := result.([]byte)
	if err := opts.Publish(data); err != nil {
		return nil, err
	}
	return data, nil
}

// IndexWordCloud makes sure the configured word cloud is on disk and
// returns the URL it is served under.
func (service *CoreService) IndexWordCloud(ctx context.Context) (string, error) {
	cfg := service.config.WordCloud
	data, err := service.WordCloud(ctx, cfg.Source, cfg.Method, wordcloud.GenerateOptions{})
	if err != nil {
		return "", err
	}

	service.indexMu.Lock()
	defer service.indexMu.Unlock()
	_, statErr := os.Stat(cfg.OutputPath)
	if statErr != nil || !bytes.Equal(data, service.indexPNG) {
		write := wordcloud.GenerateOptions{Write: true, Path: cfg.OutputPath}
		if err := write.Publish(data); err != nil {
			return "", err
		}
		service.indexPNG = data
	}
	return service.wordCloudURL(), nil
}

// wordCloudURL maps the output path below the static dir to /static/...,
// anything else is served through the on-demand endpoint.
func (service *CoreService) wordCloudURL() string {
	cfg := service.config.WordCloud
	rel, err := filepath.Rel(service.config.StaticDir, cfg.OutputPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		query := url.Values{}
		query.Set("source", cfg.Source)
		query.Set("method", cfg.Method)
		return "/wordcloud.png?" + query.Encode()
	}
	return "/static/" + filepath.ToSlash(rel)
}

// ConvertCertificates converts every PDF of the configured directory.
func (service *CoreService) ConvertCertificates(ctx context.Context) ([]converter.Result, error) {
	cfg := service.config.Certificates
	rasterizer, err := service.newRasterizer(cfg.Ghostscript)
	if err != nil {
		return nil, err
	}
	invoker, err := commandstructure.NewCommandInvokerFromConfigs(cfg.CommandConfigs())
	if err != nil {
		return nil, err
	}
	conv, err := converter.New(rasterizer, invoker, service.databaseService, converter.Options{
		OutputDir:   cfg.OutputDir,
		DPI:         cfg.DPI,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	results, err := conv.ConvertDir(ctx, cfg.PDFDir)
	if err != nil {
		service.metrics.CertificatesConverted.WithLabelValues("failed").Inc()
		return nil, err
	}
	for _, result := range results {
		outcome := "converted"
		if result.Skipped {
			outcome = "skipped"
		}
		service.metrics.CertificatesConverted.WithLabelValues(outcome).Inc()
	}
	return results, nil
}

// CertificateImage returns the converted JPEG of a certificate id from the
// asset store, falling back to the output directory.
func (service *CoreService) CertificateImage(ctx context.Context, id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: invalid certificate id %q", ErrNotFound, id)
	}

	asset, err := service.databaseService.GetAssetByKey(ctx, converter.AssetKey(id))
	if err == nil {
		return asset.Data, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(service.config.Certificates.OutputDir, id+".jpg"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: certificate image %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read certificate image %s: %w", id, err)
	}
	return data, nil
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}
