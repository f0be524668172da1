package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/credstore"
	dbsqlite "github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/db/sqlite"
	promptrenderer "github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/prompt"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/registry"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/render"
	visiongemini "github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/vision/gemini"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/vision/openaivision"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/vision/tesseract"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/usecase/extract"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/usecase/flow"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/usecase/translator"
)

func main() {
	var (
		imagePath = flag.String("image", "", "captured region image (png or jpeg)")
		outPath   = flag.String("out", "bilingual.png", "output image path")
		toLang    = flag.String("to", "zh", "target language code")
		fromLang  = flag.String("from", "", "source language code (empty = auto)")
		engine    = flag.String("engine", string(domain.EngineOpenAI), "preferred translation engine")
		fallback  = flag.String("fallback", "", "fallback translation engine")
		vision    = flag.String("vision", "gemini", "vision backend: gemini, openai or tesseract")
		mode      = flag.String("mode", string(ports.OverlayBelow), "overlay mode: below or replace")
		dataDir   = flag.String("data", defaultDataDir(), "data directory")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: screentranslate -image region.png [-to zh] [-engine openai]")
		os.Exit(2)
	}

	if err := run(*imagePath, *outPath, *toLang, *fromLang,
		domain.EngineType(*engine), domain.EngineType(*fallback),
		*vision, ports.OverlayMode(*mode), *dataDir, logger); err != nil {
		logger.Error("run failed", "error", err)
		if hint := domain.Recovery(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

func run(imagePath, outPath, toLang, fromLang string, preferred, fallbackEngine domain.EngineType,
	visionName string, mode ports.OverlayMode, dataDir string, logger *slog.Logger) error {

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	db, err := dbsqlite.Init(filepath.Join(dataDir, "screentranslate.db"))
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer db.Close()
	settings := dbsqlite.NewSettingsRepo(db)
	cache := dbsqlite.NewCacheRepo(db)

	creds, err := credstore.Open(filepath.Join(dataDir, "secrets"))
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	// Wire dependencies explicitly so the composition stays readable.
	prompts := promptrenderer.New()
	reg := registry.New(creds, prompts)
	backend, err := visionBackend(visionName, creds)
	if err != nil {
		return err
	}
	engine := extract.New(backend, prompts, "")
	trans := translator.New(translator.Deps{
		Providers: reg,
		Settings:  settings,
		Cache:     cache,
		Logger:    logger,
	})
	controller := flow.New(engine, trans, render.New(), logEmitter{logger}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := controller.Run(ctx, flow.Request{
		ImageData:  imageData,
		TargetLang: toLang,
		SourceLang: fromLang,
		Preferred:  preferred,
		Fallback:   fallbackEngine,
		Style:      ports.OverlayStyle{Mode: mode},
	})
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, res.Image); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	logger.Info("wrote bilingual image", "path", outPath, "segments", len(res.Segments))
	for _, seg := range res.Segments {
		fmt.Printf("%s\n  -> %s\n", seg.Segment.Text, seg.Translated)
	}
	return nil
}

func visionBackend(name string, creds ports.CredentialStore) (ports.VisionBackend, error) {
	switch name {
	case "gemini":
		return visiongemini.New(apiKey(creds, domain.EngineGemini, "GEMINI_API_KEY"), ""), nil
	case "openai":
		return openaivision.New("", "", apiKey(creds, domain.EngineOpenAI, "OPENAI_API_KEY")), nil
	case "tesseract":
		return tesseract.New(), nil
	}
	return nil, fmt.Errorf("unknown vision backend %q", name)
}

func apiKey(creds ports.CredentialStore, engine domain.EngineType, envVar string) string {
	if stored, err := creds.Get(engine); err == nil && stored != nil && stored.APIKey != "" {
		return stored.APIKey
	}
	return os.Getenv(envVar)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".screentranslate")
}

type logEmitter struct{ log *slog.Logger }

func (e logEmitter) Emit(name string, payload any) {
	if update, ok := payload.(domain.FlowUpdate); ok {
		e.log.Info(name, "phase", update.Phase, "progress", update.Progress)
		return
	}
	e.log.Debug(name)
}
