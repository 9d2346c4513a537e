package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const testData = `title|month|description|certificate_id
Introduction to Python|January 2019|Learn Python for data science.|1001
Deep Learning with Keras 2.0|April 2019|Build deep learning models with Keras.|1004
`

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "certificates_info.txt")
	if err := os.WriteFile(dataPath, []byte(testData), 0o644); err != nil {
		t.Fatalf("failed to write data file: %v", err)
	}
	outputPath := filepath.Join(dir, "static", "images", "certs_wordcloud.png")
	config := "logLevel: error\n" +
		"dataPath: " + dataPath + "\n" +
		"staticDir: " + filepath.Join(dir, "static") + "\n" +
		"wordCloud:\n  width: 200\n  height: 100\n  outputPath: " + outputPath + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path, outputPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", ""
	// flag values outlive Execute on the shared root command
	for _, cmd := range rootCmd.Commands() {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCoursesCmd(t *testing.T) {
	config, _ := writeTestConfig(t)
	out, err := execute(t, "courses", "--config", config)
	if err != nil {
		t.Fatalf("courses error = %v", err)
	}
	for _, want := range []string{"INDEX", "Introduction to Python", "April 2019"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got %s", want, out)
		}
	}
}

func TestWordCloudCmd(t *testing.T) {
	config, outputPath := writeTestConfig(t)
	if _, err := execute(t, "wordcloud", "--config", config, "--method", "use_entities"); err != nil {
		t.Fatalf("wordcloud error = %v", err)
	}
	f, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("Expected word cloud at %s: %v", outputPath, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("Expected a PNG: %v", err)
	}
}

func TestWordCloudCmd_Output(t *testing.T) {
	config, defaultPath := writeTestConfig(t)
	output := filepath.Join(t.TempDir(), "nested", "cloud.png")
	if _, err := execute(t, "wordcloud", "--config", config, "--output", output); err != nil {
		t.Fatalf("wordcloud error = %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("Expected word cloud at %s: %v", output, err)
	}
	if _, err := os.Stat(defaultPath); err == nil {
		t.Errorf("Expected nothing at the configured path %s", defaultPath)
	}
}

func TestWordCloudCmd_Show(t *testing.T) {
	config, _ := writeTestConfig(t)
	out, err := execute(t, "wordcloud", "--config", config, "--show")
	if err != nil {
		t.Fatalf("wordcloud error = %v", err)
	}
	if _, err := png.Decode(strings.NewReader(out)); err != nil {
		t.Errorf("Expected PNG on stdout: %v", err)
	}
}

func TestWordCloudCmd_UnknownMethod(t *testing.T) {
	config, _ := writeTestConfig(t)
	if _, err := execute(t, "wordcloud", "--config", config, "--method", "magic"); err == nil {
		t.Error("Expected error for an unknown method")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := execute(t, "courses", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing config file")
	}
}
