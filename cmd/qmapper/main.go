// Command qmapper analyzes a question paper against a syllabus from the
// command line and writes the attribution results to a file or stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/qpaper/qmapper/internal/ai"
	"github.com/qpaper/qmapper/internal/analyze"
	"github.com/qpaper/qmapper/internal/export"
	"github.com/qpaper/qmapper/internal/extract"
	"github.com/qpaper/qmapper/internal/match"
	"github.com/qpaper/qmapper/internal/platform/config"
	"github.com/qpaper/qmapper/internal/question"
	"github.com/qpaper/qmapper/internal/syllabus"
)

func main() {
	var (
		syllabusPath = flag.String("syllabus", "", "syllabus file (.json, .yaml, .pdf, .png, .jpg, .txt)")
		paperPath    = flag.String("paper", "", "question paper file (.pdf, .png, .jpg, .txt)")
		outPath      = flag.String("out", "", "output file (default stdout)")
		formatFlag   = flag.String("format", "json", "output format: json, csv, or xlsx")
		maxFlag      = flag.Int("max", 0, "maximum questions to analyze (default from config)")
		tesseract    = flag.String("tesseract", "", "explicit path to the tesseract binary")
		verbose      = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*syllabusPath, *paperPath, *outPath, *formatFlag, *maxFlag, *tesseract); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(syllabusPath, paperPath, outPath, formatFlag string, maxFlag int, tesseract string) error {
	if syllabusPath == "" || paperPath == "" {
		return fmt.Errorf("both -syllabus and -paper are required")
	}

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if tesseract != "" {
		cfg.OCR.TesseractCmd = tesseract
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	extractor := extract.New(cfg.OCR.TesseractCmd)

	catalog, err := loadCatalog(ctx, extractor, syllabusPath)
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		return analyze.ErrEmptyCatalog
	}
	fmt.Fprintf(os.Stderr, "parsed %d subjects from %s\n", len(catalog), filepath.Base(syllabusPath))

	paperText, err := extractor.FromFile(ctx, paperPath)
	if err != nil {
		return err
	}

	max := cfg.Analyze.MaxQuestions
	if maxFlag > 0 {
		max = maxFlag
	}
	units := question.Split(paperText, max)
	if len(units) == 0 {
		units = question.FallbackLines(paperText, max)
	}
	if len(units) == 0 {
		return analyze.ErrNoQuestionsFound
	}
	fmt.Fprintf(os.Stderr, "segmented %d questions from %s\n", len(units), filepath.Base(paperPath))

	matcher := buildMatcher(cfg)
	runner := analyze.NewRunner(matcher)

	progress := func(done, total int, r match.Result) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s (%.2f, %s)\n", done, total, r.SubjectName, r.Confidence, r.Source)
	}
	results, err := runner.Run(ctx, catalog, units, progress)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := export.Write(out, format, results); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "wrote %d results to %s\n", len(results), outPath)
	}
	return nil
}

// loadCatalog builds the subject catalog from the syllabus file. Structured
// formats parse directly; everything else goes through text extraction and
// the free-form normalizer.
func loadCatalog(ctx context.Context, extractor *extract.Extractor, path string) (syllabus.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return syllabus.LoadFile(path)
	default:
		text, err := extractor.FromFile(ctx, path)
		if err != nil {
			return nil, err
		}
		return syllabus.ParseText(text), nil
	}
}

func buildMatcher(cfg *config.Config) *match.Matcher {
	var provider ai.Provider
	if cfg.HasAIProvider() {
		router := ai.NewRouter()
		if cfg.AI.Google.APIKey != "" {
			router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey))
		}
		if cfg.AI.Ollama.Enabled {
			router.Register("ollama", ai.NewOllamaProvider(cfg.AI.Ollama.URL))
		}
		provider = router
	} else {
		fmt.Fprintln(os.Stderr, "no AI provider configured, matching is heuristic-only")
	}

	var opts []match.Option
	if cfg.AI.Model != "" {
		opts = append(opts, match.WithModel(cfg.AI.Model))
	}
	return match.NewMatcher(provider, opts...)
}
