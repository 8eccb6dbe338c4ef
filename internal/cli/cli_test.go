package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/benoitkugler/svg2png/internal/cache"
	"github.com/benoitkugler/svg2png/internal/config"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/benoitkugler/svg2png/svgpng"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50"><rect width="100" height="50" fill="#ff0000"/></svg>`

type result struct {
	stdout, logs string
	err          error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), logs: logs.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func pngFileSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Width, cfg.Height
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "icon.svg", testSVG)

	res := run(t, "", "convert", in)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if w, h := pngFileSize(t, filepath.Join(dir, "icon.png")); w != 100 || h != 50 {
		t.Errorf("size = %dx%d", w, h)
	}
	if !strings.Contains(res.logs, "Generated") {
		t.Errorf("missing log line: %q", res.logs)
	}

	out := filepath.Join(dir, "big.png")
	if res := run(t, "", "convert", in, "-o", out, "--scale", "3"); res.err != nil {
		t.Fatal(res.err)
	}
	if w, h := pngFileSize(t, out); w != 300 || h != 150 {
		t.Errorf("scaled size = %dx%d", w, h)
	}

	if res := run(t, "", "convert", in, "-o", out, "--width", "10"); res.err != nil {
		t.Fatal(res.err)
	}
	if w, h := pngFileSize(t, out); w != 10 || h != 50 {
		t.Errorf("explicit size = %dx%d", w, h)
	}
}

func TestConvertStdio(t *testing.T) {
	res := run(t, testSVG, "convert", "-", "--height", "5")
	if res.err != nil {
		t.Fatal(res.err)
	}
	cfg, err := png.DecodeConfig(strings.NewReader(res.stdout))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100 || cfg.Height != 5 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.svg", "<svg")
	good := writeFile(t, dir, "good.svg", testSVG)

	if res := run(t, "", "convert", bad); res.err == nil || !strings.Contains(res.err.Error(), "PARSE_ERROR") {
		t.Errorf("parse failure: %v", res.err)
	}
	if res := run(t, "", "convert", good, "--scale", "2", "--width", "3"); res.err == nil {
		t.Error("--scale and --width should be exclusive")
	}
	if res := run(t, "", "convert", good, "--width", "0"); res.err == nil || !strings.Contains(res.err.Error(), "INVALID_ARGUMENT") {
		t.Errorf("zero width: %v", res.err)
	}
	if res := run(t, "", "convert", good, "--background", "chartreuse"); res.err == nil {
		t.Error("invalid color should fail")
	}
	if res := run(t, "", "convert"); res.err == nil {
		t.Error("missing input should fail")
	}
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.svg", testSVG)
	b := writeFile(t, dir, "b.svg", `<svg viewBox="0 0 8 4"/>`)
	outDir := filepath.Join(dir, "out")

	res := run(t, "", "convert", a, b, "-o", outDir)
	if res.err != nil {
		t.Fatalf("%v\n%s", res.err, res.logs)
	}
	if w, h := pngFileSize(t, filepath.Join(outDir, "a.png")); w != 100 || h != 50 {
		t.Errorf("a.png size = %dx%d", w, h)
	}
	if w, h := pngFileSize(t, filepath.Join(outDir, "b.png")); w != 8 || h != 4 {
		t.Errorf("b.png size = %dx%d", w, h)
	}
	if !strings.Contains(res.logs, "2 files converted") {
		t.Errorf("missing summary: %q", res.logs)
	}

	bad := writeFile(t, dir, "bad.svg", "nope")
	res = run(t, "", "convert", a, bad, "-o", outDir)
	if res.err == nil || !strings.Contains(res.err.Error(), "1 of 2 files failed") {
		t.Errorf("batch error = %v", res.err)
	}
}

func TestConvertBackground(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "empty.svg", `<svg width="2" height="2"/>`)
	out := filepath.Join(dir, "empty.png")
	if res := run(t, "", "convert", in, "-o", out, "--background", "#0f0"); res.err != nil {
		t.Fatal(res.err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if c := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); c != (color.RGBA{G: 0xff, A: 0xff}) {
		t.Errorf("pixel = %v, want green", c)
	}
}

func TestDims(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "icon.svg", `<svg width="12.5" viewBox="0 0 10 4"/>`)

	res := run(t, "", "dims", in)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.stdout, "12.5") || !strings.Contains(res.stdout, "5") {
		t.Errorf("output = %q", res.stdout)
	}

	res = run(t, "", "dims", "--json", in)
	if res.err != nil {
		t.Fatal(res.err)
	}
	var dims svgpng.Dimensions
	if err := json.Unmarshal([]byte(res.stdout), &dims); err != nil {
		t.Fatal(err)
	}
	if dims != (svgpng.Dimensions{Width: 12.5, Height: 5}) {
		t.Errorf("dims = %+v", dims)
	}

	if res := run(t, "<html/>", "dims", "-"); res.err == nil || !strings.Contains(res.err.Error(), "PARSE_ERROR") {
		t.Errorf("parse failure: %v", res.err)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "svg2png.toml", "[render]\nmax_pixels = 100\n")
	in := writeFile(t, dir, "icon.svg", testSVG)

	res := run(t, "", "--config", cfgPath, "convert", in)
	if res.err == nil || !strings.Contains(res.err.Error(), "ALLOCATION_ERROR") {
		t.Errorf("limit from config not applied: %v", res.err)
	}

	if res := run(t, "", "--config", filepath.Join(dir, "missing.toml"), "dims", in); res.err == nil {
		t.Error("missing config file should fail")
	}
}

func TestVerboseLogging(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "icon.svg", testSVG)
	res := run(t, "", "-v", "convert", in)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.logs, "Converting SVG with dimensions") {
		t.Errorf("debug lines missing: %q", res.logs)
	}
	res = run(t, "", "convert", in)
	if strings.Contains(res.logs, "Converting SVG with dimensions") {
		t.Errorf("debug lines without -v: %q", res.logs)
	}
}

func TestWarnModeLogging(t *testing.T) {
	t.Cleanup(func() {
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	})
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "svg2png.toml", "[render]\nerror_mode = \"warn\"\n")
	in := writeFile(t, dir, "icon.svg", `<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><unknownElement/></svg>`)

	res := run(t, "", "--config", cfgPath, "convert", in)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !strings.Contains(res.logs, "WARN") || !strings.Contains(res.logs, "Cannot process svg element unknownElement") {
		t.Errorf("renderer warning not forwarded: %q", res.logs)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	c, err := newCache(ctx, config.Default().Cache, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("default backend = %T, want *cache.NullCache", c)
	}

	cfg := config.Default().Cache
	cfg.Backend = config.CacheMemory
	cfg.MaxEntries = 8
	c, err = newCache(ctx, cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Errorf("memory backend = %T, want *cache.MemoryCache", c)
	}

	cfg.Backend = config.CacheRedis
	cfg.RedisAddr = "127.0.0.1:1"
	if _, err := newCache(ctx, cfg, logger); err == nil {
		t.Error("expected an error for an unreachable redis")
	}

	cfg.Backend = "memcached"
	if _, err := newCache(ctx, cfg, logger); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]color.Color{
		"":            nil,
		"none":        nil,
		"Transparent": nil,
		"#fff":        color.RGBA{0xff, 0xff, 0xff, 0xff},
		"#102030":     color.RGBA{0x10, 0x20, 0x30, 0xff},
	} {
		got, err := parseColor(in)
		if err != nil || got != want {
			t.Errorf("parseColor(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := parseColor("blue"); err == nil {
		t.Error("named colors are not supported")
	}
}

func TestConverterOptions(t *testing.T) {
	r := config.Default().Render
	r.ErrorMode = "warn"
	r.Background = "#000"
	opts, err := converterOptions(r, log.Default())
	if err != nil {
		t.Fatal(err)
	}
	if opts.ErrorMode != svgicon.WarnErrorMode || opts.Background == nil || opts.Limits != r.Limits() {
		t.Errorf("unexpected options %+v", opts)
	}
	r.Compression = "huge"
	if _, err := converterOptions(r, log.Default()); err == nil {
		t.Error("expected an error for an unknown compression")
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("logger not retrieved from context")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected the default logger")
	}
	newProgress(logger).done("Converted 3 files")
	if !strings.Contains(buf.String(), "Converted 3 files (") {
		t.Errorf("progress line = %q", buf.String())
	}
}
