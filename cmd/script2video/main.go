package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ivlev/script2video/internal/blueprint"
	"github.com/ivlev/script2video/internal/compiler"
	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/style"
	"github.com/ivlev/script2video/internal/system"
)

func main() {
	// .env is optional; flags and config take precedence anyway.
	_ = godotenv.Load()

	configPtr := flag.String("config", "", "Path to YAML run config (built-in defaults if empty)")
	scriptPtr := flag.String("script", "", "Path to script document (default: newest file in input/scripts/)")
	stylePtr := flag.String("style", "", "Path to optional style override document")
	outputPtr := flag.String("output", "", "Blueprint output path (default: auto-named in output/blueprints/)")
	workersPtr := flag.Int("workers", 0, "Scene workers (0 = autodetect)")
	presetPtr := flag.String("preset", "", "Canvas preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	switch *presetPtr {
	case "16:9":
		cfg.Canvas.Width, cfg.Canvas.Height = 1280, 720
	case "9:16":
		cfg.Canvas.Width, cfg.Canvas.Height = 720, 1280
	case "4:5":
		cfg.Canvas.Width, cfg.Canvas.Height = 1080, 1350
	}

	switch cfg.Logging.Level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	if *verbosePtr {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.CreateDirs(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	scriptPath := *scriptPtr
	if scriptPath == "" {
		latest, err := system.FindLatestScript(cfg.Input.ScriptsDir)
		if err != nil {
			log.Fatalf("[-] No script found in %s. Pass -script or drop one there", cfg.Input.ScriptsDir)
		}
		scriptPath = latest
		fmt.Printf("[*] Using script: %s\n", scriptPath)
	}

	doc, err := script.Read(scriptPath)
	if err != nil {
		log.Fatalf("[-] Script error: %v", err)
	}

	defaultStyle := []byte(style.DefaultYAML)
	if cfg.StyleFile != "" {
		data, err := os.ReadFile(cfg.StyleFile)
		if err != nil {
			log.Fatalf("[-] Failed to read style file: %v", err)
		}
		defaultStyle = data
	}

	var override []byte
	if *stylePtr != "" {
		override, err = os.ReadFile(*stylePtr)
		if err != nil {
			log.Fatalf("[-] Failed to read style override: %v", err)
		}
	}

	profile, err := style.Resolve(defaultStyle, override)
	if err != nil {
		log.Fatalf("[-] Style error: %v", err)
	}

	comp := compiler.New(*profile, cfg, log)
	bp, err := comp.Compile(context.Background(), doc)
	if err != nil {
		log.Fatalf("[-] Compilation failed: %v", err)
	}

	outputPath := *outputPtr
	if outputPath == "" {
		outputPath = blueprint.SlugPath(cfg.Output.BlueprintsDir, doc.Topic)
	}
	if err := blueprint.Write(bp, outputPath); err != nil {
		log.Fatalf("[-] Failed to write blueprint: %v", err)
	}

	fmt.Printf("[+++] Blueprint ready: %s (%d scenes, %.1fs)\n", outputPath, len(bp.Scenes), bp.TotalDuration)
}
