// Package converter turns certificate PDFs into JPEG images by shelling out
// to a PDF rasterizer, and keeps the text found in each PDF.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ErrRasterizerNotFound is returned when the rasterizer binary is not on PATH.
var ErrRasterizerNotFound = errors.New("pdf rasterizer not found")

// DefaultGhostscriptBinary is looked up on PATH when no binary is configured.
const DefaultGhostscriptBinary = "gs"

// Rasterizer renders the first page of a PDF into a JPEG file.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outPath string, dpi int) error
}

// Ghostscript rasterizes through the gs command line tool.
type Ghostscript struct {
	binary string
}

// NewGhostscript resolves binary on PATH. An empty binary means "gs".
func NewGhostscript(binary string) (*Ghostscript, error) {
	if binary == "" {
		binary = DefaultGhostscriptBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrRasterizerNotFound, binary, err)
	}
	return &Ghostscript{binary: path}, nil
}

// Args returns the gs arguments for rendering the first page of pdfPath.
func (g *Ghostscript) Args(pdfPath, outPath string, dpi int) []string {
	return []string{
		"-dSAFER",
		"-dBATCH",
		"-dNOPAUSE",
		"-dQUIET",
		"-sDEVICE=jpeg",
		"-dJPEGQ=90",
		"-r" + strconv.Itoa(dpi),
		"-dFirstPage=1",
		"-dLastPage=1",
		"-sOutputFile=" + outPath,
		pdfPath,
	}
}

// Rasterize runs gs and includes its output in the error on failure.
func (g *Ghostscript) Rasterize(ctx context.Context, pdfPath, outPath string, dpi int) error {
	args := g.Args(pdfPath, outPath, dpi)
	slog.Debug("converter: running ghostscript", "binary", g.binary, "args", strings.Join(args, " "))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to rasterize %s: %w: %s", pdfPath, err, strings.TrimSpace(output.String()))
	}
	return nil
}
