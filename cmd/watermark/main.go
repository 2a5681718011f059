// Command watermark draws a text watermark onto an image file.
//
//	watermark -in photo.jpg -out marked.png -text "© 2024 Example" -anchor "bottom right" -opacity 0.6
//
// It runs the same load, apply and save steps as the MCP server in one shot.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/watermark-mcp/internal/config"
	"github.com/ironsheep/watermark-mcp/internal/imaging"
	"github.com/ironsheep/watermark-mcp/internal/logging"
	"github.com/ironsheep/watermark-mcp/internal/ocr"
	"github.com/ironsheep/watermark-mcp/internal/session"
	"github.com/ironsheep/watermark-mcp/internal/watermark"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "watermark: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	in, out  string
	text     string
	anchor   string
	x, y     int
	color    string
	opacity  float64
	size     int
	fontPath string
	verify   bool
	explicit bool // -x and -y were given
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("watermark", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "Input image path (required)")
	fs.StringVar(&o.out, "out", "", "Output image path; .png is added when there is no extension (required)")
	fs.StringVar(&o.text, "text", "", "Watermark text (required)")
	fs.StringVar(&o.anchor, "anchor", "Center", "Position: \"Top Left\", \"Center\" or \"Bottom Right\"")
	fs.IntVar(&o.x, "x", 0, "Explicit X of the text's top-left corner (use with -y, overrides -anchor)")
	fs.IntVar(&o.y, "y", 0, "Explicit Y of the text's top-left corner (use with -x, overrides -anchor)")
	fs.StringVar(&o.color, "color", "white", "Text color: #RRGGBB, #RGB, R,G,B or a name")
	fs.Float64Var(&o.opacity, "opacity", 1.0, "Opacity in (0, 1]")
	fs.IntVar(&o.size, "size", cfg.DefaultFontSize, "Font size in pixels")
	fs.StringVar(&o.fontPath, "font", cfg.FontPath, "TrueType/OpenType font file (default: bundled Go Regular)")
	fs.BoolVar(&o.verify, "verify", false, "Read the watermark back with Tesseract and fail if it is not legible")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var sawX, sawY bool
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x":
			sawX = true
		case "y":
			sawY = true
		}
	})
	if sawX != sawY {
		return nil, errors.New("-x and -y must be given together")
	}
	o.explicit = sawX

	switch {
	case o.in == "":
		return nil, errors.New("-in is required")
	case o.out == "":
		return nil, errors.New("-out is required")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	// -h works even with a malformed environment; the config error is
	// reported once flags parse.
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}
	o, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}
	if cfgErr != nil {
		return cfgErr
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Stderr: stderr})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fonts, err := watermark.LoadFonts(o.fontPath)
	if err != nil {
		return err
	}
	defer fonts.Close()

	placement := watermark.AtPoint(image.Pt(o.x, o.y))
	if !o.explicit {
		anchor, err := watermark.ParseAnchor(o.anchor)
		if err != nil {
			return err
		}
		placement = watermark.AtAnchor(anchor)
	}

	c, err := imaging.ParseColor(o.color)
	if err != nil {
		return err
	}
	spec := watermark.Spec{Text: o.text, Color: c, Opacity: o.opacity, FontSize: o.size}

	img, err := imaging.NewImageCache().Load(o.in)
	if err != nil {
		return err
	}

	sess, err := session.Session{}.Upload(img, o.in).Apply(spec, placement, fonts)
	if err != nil {
		return err
	}
	log.Debug("watermark applied",
		zap.String("placement", placement.String()),
		zap.Stringer("region", sess.LastRegion()),
		zap.String("font", fonts.Source()))

	if o.verify {
		res, err := ocr.VerifyText(sess.Current(), sess.LastRegion(), o.text, cfg.OCRLanguage)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if !res.Match {
			return fmt.Errorf("verify: watermark not legible, read %q", res.Recognized)
		}
	}

	path, err := imaging.Save(sess.Current(), o.out)
	if err != nil {
		return err
	}

	r := sess.LastRegion()
	fmt.Fprintf(stdout, "%s: %q at (%d,%d) size %dx%d\n", path, o.text, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	return nil
}
