package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/watermark-mcp/internal/config"
	"github.com/ironsheep/watermark-mcp/internal/logging"
	"github.com/ironsheep/watermark-mcp/internal/server"
	"github.com/ironsheep/watermark-mcp/internal/watermark"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("watermark-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("watermark-mcp - MCP server for text watermarking")
			fmt.Println()
			fmt.Println("Usage: watermark-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  WATERMARK_MCP_LOG_LEVEL=debug        Log level (debug, info, warn, error)")
			fmt.Println("  WATERMARK_MCP_LOG_FILE=path          Also write JSON logs to a rotated file")
			fmt.Println("  WATERMARK_FONT_PATH=path.ttf         Font file (default: bundled Go Regular)")
			fmt.Println("  WATERMARK_DEFAULT_FONT_SIZE=20       Font size when a call gives none")
			fmt.Println("  WATERMARK_PREVIEW_SIZE=400           Preview box edge in pixels")
			fmt.Println("  WATERMARK_OCR_LANGUAGE=eng           Tesseract language for watermark_verify")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "watermark-mcp: invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr (stdout is for MCP protocol)
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "watermark-mcp: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	fonts, err := watermark.LoadFonts(cfg.FontPath)
	if err != nil {
		log.Fatal("cannot load font", zap.String("path", cfg.FontPath), zap.Error(err))
	}
	defer fonts.Close()

	log.Info("starting watermark-mcp",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.String("font", fonts.Source()))

	srv := server.New(server.Options{
		Config:  cfg,
		Fonts:   fonts,
		Logger:  log,
		Version: Version,
	})
	if err := srv.Run(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
