package converter

import (
	"errors"
	"strings"
	"testing"
)

func TestNewGhostscript_NotFound(t *testing.T) {
	_, err := NewGhostscript("certshowcase-no-such-binary")
	if !errors.Is(err, ErrRasterizerNotFound) {
		t.Errorf("Expected ErrRasterizerNotFound, got %v", err)
	}
}

func TestGhostscript_Args(t *testing.T) {
	g := &Ghostscript{binary: "gs"}
	args := strings.Join(g.Args("in.pdf", "out.jpg", 120), " ")

	for _, want := range []string{
		"-dSAFER", "-dBATCH", "-dNOPAUSE", "-sDEVICE=jpeg", "-r120",
		"-dFirstPage=1", "-dLastPage=1", "-sOutputFile=out.jpg",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected %q in %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "in.pdf") {
		t.Errorf("Expected input PDF last, got %q", args)
	}
}

func TestPDFText_InvalidFile(t *testing.T) {
	if _, err := PDFText("testdata-does-not-exist.pdf"); err == nil {
		t.Error("Expected error for a missing PDF")
	}
}
