package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"FractalRenderer/client"
	"FractalRenderer/codec"
	"FractalRenderer/coloring"
	"FractalRenderer/colormap"
	"FractalRenderer/export"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"FractalRenderer/server"
	"FractalRenderer/session"
	"FractalRenderer/settings"
	"FractalRenderer/telemetry"
	"github.com/BrugadaSyndrome/bslogger"
)

// parameterFlag collects repeated name=value flags.
type parameterFlag fractal.Parameters

func (p parameterFlag) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, fmt.Sprintf("%s=%g", k, v))
	}
	return strings.Join(pairs, ",")
}

func (p parameterFlag) Set(value string) error {
	name, raw, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", value)
	}
	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", name, err)
	}
	p[name] = number
	return nil
}

var (
	settingsFile, outputFile, remoteAddress, importPack, preset string
	kernelName, coloringName, packName, mapName                 string
	width, height, antialiasing, maxIterations                  int
	centerReal, centerImag, viewWidth                           float64
	serve                                                       bool
	exportTimeout                                               time.Duration
	kernelParams                                                = parameterFlag{}
	coloringParams                                              = parameterFlag{}
	setFlags                                                    = map[string]bool{}
)

func parseArguments() {
	flag.StringVar(&settingsFile, "settings", "", "JSON settings file")
	flag.StringVar(&outputFile, "output", "fractal.png", "Image file to export to (.png, .jpg, .tiff, .bmp)")
	flag.StringVar(&remoteAddress, "remote", "", "Export on the render server at this address")
	flag.BoolVar(&serve, "serve", false, "Run a render server instead of exporting")
	flag.StringVar(&importPack, "importPack", "", "Color pack JSON file to save into the pack database")
	flag.StringVar(&preset, "preset", "", "Kernel preset to apply")
	flag.StringVar(&kernelName, "kernel", "", "Fractal kernel")
	flag.StringVar(&coloringName, "coloring", "", "Coloring algorithm")
	flag.StringVar(&packName, "pack", "", "Color pack")
	flag.StringVar(&mapName, "map", "", "Color map")
	flag.IntVar(&width, "width", 0, "Width of the exported image")
	flag.IntVar(&height, "height", 0, "Height of the exported image")
	flag.IntVar(&antialiasing, "aa", 0, "Supersampling factor (1-4)")
	flag.IntVar(&maxIterations, "iterations", 0, "Maximum iterations per point")
	flag.Float64Var(&centerReal, "centerReal", 0, "Real part of the view center")
	flag.Float64Var(&centerImag, "centerImag", 0, "Imaginary part of the view center")
	flag.Float64Var(&viewWidth, "viewWidth", 0, "Width of the view on the complex plane")
	flag.DurationVar(&exportTimeout, "timeout", 10*time.Minute, "Longest a single export may run")
	flag.Var(kernelParams, "param", "Kernel parameter name=value (repeatable)")
	flag.Var(coloringParams, "colorParam", "Coloring parameter name=value (repeatable)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
}

// applyFlags lets command line flags override the settings file and environment.
func applyFlags(s *settings.Settings) {
	if setFlags["kernel"] {
		s.Kernel = kernelName
	}
	if setFlags["coloring"] {
		s.Coloring = coloringName
	}
	if setFlags["pack"] {
		s.Pack = packName
	}
	if setFlags["map"] {
		s.Map = mapName
	}
	if setFlags["width"] {
		s.ImageWidth = width
	}
	if setFlags["height"] {
		s.ImageHeight = height
	}
	if setFlags["aa"] {
		s.Antialiasing = antialiasing
	}
	if setFlags["iterations"] {
		s.MaxIterations = maxIterations
	}
	_ = s.Verify()
}

func main() {
	logger := bslogger.NewLogger("FractalRenderer", bslogger.Normal, nil)
	parseArguments()
	s := settings.NewSettings(settingsFile)
	applyFlags(&s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, s.Telemetry, "fractal-renderer")
	misc.CheckError(err, logger, misc.Warning)
	defer func() {
		misc.CheckError(shutdown(context.Background()), logger, misc.Warning)
	}()

	req := export.Request{
		Width:          s.ImageWidth,
		Height:         s.ImageHeight,
		MaxIterations:  s.MaxIterations,
		Antialiasing:   s.Antialiasing,
		KernelName:     s.Kernel,
		KernelParams:   fractal.Parameters(kernelParams),
		ColoringName:   s.Coloring,
		ColoringParams: fractal.Parameters(coloringParams),
		PackName:       s.Pack,
		MapName:        s.Map,
	}

	if remoteAddress != "" {
		exportRemote(logger, s, req)
		return
	}

	colors, closeStore := loadColorPacks(ctx, logger, s)
	defer closeStore()
	sess := newSession(colors, logger, s)
	if serve {
		runServer(ctx, logger, sess, s)
		return
	}
	exportLocal(ctx, logger, sess, s, req)
}

// loadColorPacks builds the repository. The returned close func releases the pack database,
// which stays open so the repository can reload from it.
func loadColorPacks(ctx context.Context, logger bslogger.Logger, s settings.Settings) (*colormap.Repository, func()) {
	colors := colormap.NewRepository()
	colors.LoadBuiltin()
	for _, dir := range s.ColorPackDirs {
		misc.CheckError(colors.LoadDir(dir), logger, misc.Warning)
	}

	if s.PackDatabase == "" {
		if importPack != "" {
			logger.Warning("Ignoring -importPack since no pack database is configured")
		}
		return colors, func() {}
	}
	store, err := colormap.OpenStore(s.PackDatabase)
	if misc.CheckError(err, logger, misc.Warning) {
		return colors, func() {}
	}
	closeStore := func() {
		misc.CheckError(store.Close(), logger, misc.Warning)
	}

	if importPack != "" {
		contents, err := misc.ReadFile(importPack)
		if !misc.CheckError(err, logger, misc.Error) {
			name := strings.TrimSuffix(filepath.Base(importPack), filepath.Ext(importPack))
			if !misc.CheckError(store.Save(ctx, name, contents), logger, misc.Error) {
				logger.Infof("Saved %s into %s", importPack, s.PackDatabase)
			}
		}
	}
	misc.CheckError(colors.LoadStore(ctx, store), logger, misc.Warning)
	return colors, closeStore
}

func newSession(colors *colormap.Repository, logger bslogger.Logger, s settings.Settings) *session.Session {
	sess, err := session.NewSession(fractal.DefaultRegistry(), coloring.DefaultRegistry(), colors, session.Options{
		ImageWidth:  s.ImageWidth,
		ImageHeight: s.ImageHeight,
		Kernel:      s.Kernel,
		Coloring:    s.Coloring,
		Pack:        s.Pack,
		Map:         s.Map,
	})
	misc.CheckError(err, logger, misc.Fatal)
	misc.CheckError(sess.SelectColorMap(s.Pack, s.Map), logger, misc.Warning)

	if view, ok := viewOverride(sess.View()); ok {
		sess.SetView(view)
	}
	if preset != "" {
		misc.CheckError(sess.ApplyPreset(preset), logger, misc.Warning)
	}
	for name, value := range kernelParams {
		misc.CheckError(sess.SetKernelParameter(name, value), logger, misc.Warning)
	}
	for name, value := range coloringParams {
		misc.CheckError(sess.SetColoringParameter(name, value), logger, misc.Warning)
	}
	return sess
}

// viewOverride applies the view flags to base, reporting whether any was given.
func viewOverride(base fractal.ViewParameters) (fractal.ViewParameters, bool) {
	changed := false
	if setFlags["centerReal"] {
		base.CenterReal, changed = centerReal, true
	}
	if setFlags["centerImag"] {
		base.CenterImag, changed = centerImag, true
	}
	if setFlags["viewWidth"] {
		base.Width, changed = viewWidth, true
	}
	return base, changed
}

func exportLocal(ctx context.Context, logger bslogger.Logger, sess *session.Session, s settings.Settings, req export.Request) {
	saver, err := codec.NewFileSaver(outputPath(s), s.JPEGQuality)
	misc.CheckError(err, logger, misc.Fatal)

	// session parameters already hold the flag values
	req.KernelParams, req.ColoringParams = nil, nil

	exportCtx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	job, err := sess.StartExport(exportCtx, req, saver)
	misc.CheckError(err, logger, misc.Fatal)

	for stage := range job.Progress() {
		logger.Infof("Export %s: %s (%d%%)", job.ID, stage, stage.Percent())
	}
	outcome := job.Outcome()
	if !outcome.Succeeded() {
		logger.Fatalf("Export failed: %s", outcome.Message)
	}
	logger.Info(outcome.Message)
}

func exportRemote(logger bslogger.Logger, s settings.Settings, req export.Request) {
	c, err := client.NewClient(remoteAddress)
	misc.CheckError(err, logger, misc.Fatal)
	defer func() {
		misc.CheckError(c.Close(), logger, misc.Warning)
	}()

	kernel, err := fractal.DefaultRegistry().Get(s.Kernel)
	misc.CheckError(err, logger, misc.Fatal)
	if view, ok := viewOverride(kernel.DefaultView()); ok {
		req.View = &view
	}
	if preset != "" {
		p, err := fractal.FindPreset(kernel, preset)
		misc.CheckError(err, logger, misc.Fatal)
		req.KernelParams = p.Params.Merge(req.KernelParams)
	}
	img, err := c.Export(req)
	misc.CheckError(err, logger, misc.Fatal)

	saver, err := codec.NewFileSaver(outputPath(s), s.JPEGQuality)
	misc.CheckError(err, logger, misc.Fatal)
	misc.CheckError(saver.Save(context.Background(), img), logger, misc.Fatal)
}

func outputPath(s settings.Settings) string {
	if filepath.IsAbs(outputFile) {
		return outputFile
	}
	return filepath.Join(s.SavePath, outputFile)
}

func runServer(ctx context.Context, logger bslogger.Logger, sess *session.Session, s settings.Settings) {
	srv, err := server.NewServer(sess, s.ServerAddress, exportTimeout)
	misc.CheckError(err, logger, misc.Fatal)
	logger.Infof("Serving renders at %s", srv.Address())

	// SIGHUP re-reads the colour packs
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-hangup:
			if !misc.CheckError(sess.ReloadColorPacks(ctx), logger, misc.Warning) {
				logger.Infof("Reloaded color packs %v", sess.ColorPacks())
			}
		case <-ctx.Done():
			logger.Info("Shutting down")
			misc.CheckError(srv.Stop(), logger, misc.Warning)
			return
		}
	}
}
