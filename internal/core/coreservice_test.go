package core

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jo-hoe/certshowcase/internal/backend/database"
	"github.com/jo-hoe/certshowcase/internal/certificates"
	"github.com/jo-hoe/certshowcase/internal/converter"
	"github.com/jo-hoe/certshowcase/internal/nlp"
	"github.com/jo-hoe/certshowcase/internal/wordcloud"
)

const testData = `title|month|description|certificate_id
Introduction to Python|January 2019|Learn Python for data science.|1001
Deep Learning with Keras 2.0|April 2019|Build deep learning models with Keras.|1004
Machine Learning with scikit-learn|March 2019|Learn machine learning with Python.|1003
`

type fakeRasterizer struct{}

func (fakeRasterizer) Rasterize(_ context.Context, _, outPath string, _ int) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func newTestConfig(t *testing.T) *ServiceConfig {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "certificates_info.txt")
	if err := os.WriteFile(dataPath, []byte(testData), 0o644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}

	config := DefaultConfig()
	config.DataPath = dataPath
	config.StaticDir = filepath.Join(dir, "static")
	config.WordCloud.OutputPath = filepath.Join(dir, "static", "images", "certs_wordcloud.png")
	config.WordCloud.Width = 200
	config.WordCloud.Height = 100
	config.Certificates.PDFDir = filepath.Join(dir, "pdfs")
	config.Certificates.OutputDir = filepath.Join(dir, "static", "images", "certificates")
	return config
}

func newTestCoreService(t *testing.T, config *ServiceConfig) *CoreService {
	t.Helper()
	svc, err := NewCoreService(config)
	if err != nil {
		t.Fatalf("NewCoreService() error = %v", err)
	}
	svc.newRasterizer = func(string) (converter.Rasterizer, error) { return fakeRasterizer{}, nil }
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestCertificates(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))

	records, err := svc.Certificates()
	if err != nil {
		t.Fatalf("Certificates() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 certificates, got %d", len(records))
	}

	record, err := svc.Certificate(1)
	if err != nil {
		t.Fatalf("Certificate(1) error = %v", err)
	}
	if record.Title != "Deep Learning with Keras 2.0" {
		t.Errorf("Unexpected title %q", record.Title)
	}

	for _, index := range []int{-1, 3} {
		if _, err := svc.Certificate(index); !errors.Is(err, ErrNotFound) {
			t.Errorf("Certificate(%d): expected ErrNotFound, got %v", index, err)
		}
	}
}

func TestTextString_InvalidColumn(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	if _, err := svc.TextString(context.Background(), "instructor"); !errors.Is(err, certificates.ErrInvalidColumn) {
		t.Errorf("Expected ErrInvalidColumn, got %v", err)
	}
}

func TestWordCloud_CachesByText(t *testing.T) {
	config := newTestConfig(t)
	svc := newTestCoreService(t, config)
	ctx := context.Background()

	first, err := svc.WordCloud(ctx, certificates.ColumnTitle, nlp.MethodSimple, wordcloud.GenerateOptions{})
	if err != nil {
		t.Fatalf("WordCloud() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(first)); err != nil {
		t.Fatalf("Expected a PNG: %v", err)
	}

	second, err := svc.WordCloud(ctx, certificates.ColumnTitle, nlp.MethodSimple, wordcloud.GenerateOptions{})
	if err != nil {
		t.Fatalf("WordCloud() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected cached word cloud to be returned")
	}

	renders := svc.Metrics().WordCloudRenders
	if got := testutil.ToFloat64(renders.WithLabelValues(nlp.MethodSimple, "miss")); got != 1 {
		t.Errorf("Expected one render, got %v", got)
	}
	if got := testutil.ToFloat64(renders.WithLabelValues(nlp.MethodSimple, "hit")); got != 1 {
		t.Errorf("Expected one cache hit, got %v", got)
	}

	asset, err := svc.databaseService.GetAssetByKey(ctx, "wordcloud/title/simple.png")
	if err != nil {
		t.Fatalf("Expected cached asset: %v", err)
	}
	if asset.ContentType != "image/png" {
		t.Errorf("Unexpected content type %q", asset.ContentType)
	}
}

func TestWordCloud_Errors(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	ctx := context.Background()

	if _, err := svc.WordCloud(ctx, certificates.ColumnTitle, "magic", wordcloud.GenerateOptions{}); !errors.Is(err, nlp.ErrUnknownMethod) {
		t.Errorf("Expected ErrUnknownMethod, got %v", err)
	}
	if _, err := svc.WordCloud(ctx, "instructor", nlp.MethodSimple, wordcloud.GenerateOptions{}); !errors.Is(err, certificates.ErrInvalidColumn) {
		t.Errorf("Expected ErrInvalidColumn, got %v", err)
	}
}

func TestIndexWordCloud(t *testing.T) {
	config := newTestConfig(t)
	svc := newTestCoreService(t, config)

	url, err := svc.IndexWordCloud(context.Background())
	if err != nil {
		t.Fatalf("IndexWordCloud() error = %v", err)
	}
	if url != "/static/images/certs_wordcloud.png" {
		t.Errorf("Unexpected url %q", url)
	}
	if _, err := os.Stat(config.WordCloud.OutputPath); err != nil {
		t.Errorf("Expected word cloud on disk: %v", err)
	}
}

func TestWordCloudURL_OutsideStatic(t *testing.T) {
	config := newTestConfig(t)
	config.WordCloud.OutputPath = filepath.Join(t.TempDir(), "cloud.png")
	svc := newTestCoreService(t, config)

	if got := svc.wordCloudURL(); got != "/wordcloud.png?method=simple&source=title" {
		t.Errorf("Unexpected url %q", got)
	}

	config.WordCloud.Source = "title&method=x y"
	if got := svc.wordCloudURL(); got != "/wordcloud.png?method=simple&source=title%26method%3Dx+y" {
		t.Errorf("Expected an escaped query, got %q", got)
	}
}

func TestWordCloud_RenderSurvivesCancelledCaller(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := svc.WordCloud(ctx, certificates.ColumnTitle, nlp.MethodSimple, wordcloud.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected the shared render to ignore cancellation, got %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Expected a PNG: %v", err)
	}
}

func TestWordCloud_WritesWithOptions(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "cloud.png")
	var shown bytes.Buffer

	// the second call is served from the asset store and must publish too
	for i := 0; i < 2; i++ {
		shown.Reset()
		_ = os.Remove(path)
		opts := wordcloud.GenerateOptions{Show: true, ShowTo: &shown, Write: true, Path: path}
		data, err := svc.WordCloud(ctx, certificates.ColumnTitle, nlp.MethodSimple, opts)
		if err != nil {
			t.Fatalf("WordCloud() error = %v", err)
		}
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected written file on call %d: %v", i, err)
		}
		if !bytes.Equal(written, data) || !bytes.Equal(shown.Bytes(), data) {
			t.Errorf("Expected call %d to write and show the returned PNG", i)
		}
	}
}

func TestConvertCertificates(t *testing.T) {
	config := newTestConfig(t)
	svc := newTestCoreService(t, config)
	ctx := context.Background()

	if err := os.MkdirAll(config.Certificates.PDFDir, 0o755); err != nil {
		t.Fatalf("failed to create pdf dir: %v", err)
	}
	for _, id := range []string{"1001", "1004"} {
		if err := os.WriteFile(filepath.Join(config.Certificates.PDFDir, id+".pdf"), []byte("%PDF"), 0o644); err != nil {
			t.Fatalf("failed to write pdf: %v", err)
		}
	}

	results, err := svc.ConvertCertificates(ctx)
	if err != nil {
		t.Fatalf("ConvertCertificates() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	converted := svc.Metrics().CertificatesConverted.WithLabelValues("converted")
	if got := testutil.ToFloat64(converted); got != 2 {
		t.Errorf("Expected 2 conversions counted, got %v", got)
	}

	data, err := svc.CertificateImage(ctx, "1004")
	if err != nil {
		t.Fatalf("CertificateImage() error = %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Expected a JPEG: %v", err)
	}
}

func TestConvertCertificates_NoRasterizer(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	svc.newRasterizer = func(string) (converter.Rasterizer, error) { return nil, converter.ErrRasterizerNotFound }

	if _, err := svc.ConvertCertificates(context.Background()); !errors.Is(err, converter.ErrRasterizerNotFound) {
		t.Errorf("Expected ErrRasterizerNotFound, got %v", err)
	}
}

func TestCertificateImage_FallbackAndNotFound(t *testing.T) {
	config := newTestConfig(t)
	svc := newTestCoreService(t, config)
	ctx := context.Background()

	if err := os.MkdirAll(config.Certificates.OutputDir, 0o755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(config.Certificates.OutputDir, "2001.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	data, err := svc.CertificateImage(ctx, "2001")
	if err != nil || string(data) != "jpeg" {
		t.Errorf("Expected file fallback, got %q, %v", data, err)
	}

	for _, id := range []string{"missing", "", "../secret", ".hidden"} {
		if _, err := svc.CertificateImage(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("CertificateImage(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestCertificateText(t *testing.T) {
	svc := newTestCoreService(t, newTestConfig(t))
	ctx := context.Background()

	for key, text := range map[string]string{
		converter.AssetKey("1001"): "Python\nfor everyone",
		converter.AssetKey("1002"): "Data Science",
		"wordcloud/title/simple.png": "ignored",
	} {
		if _, err := svc.databaseService.PutAsset(ctx, &database.Asset{Key: key, ContentType: "image/jpeg", Text: text}); err != nil {
			t.Fatalf("PutAsset() error = %v", err)
		}
	}

	text, err := svc.TextString(ctx, SourceCertificateText)
	if err != nil {
		t.Fatalf("TextString() error = %v", err)
	}
	if text != "Python for everyone Data Science" {
		t.Errorf("Unexpected text %q", text)
	}
}
