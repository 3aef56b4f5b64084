package export

import (
	"context"
	"errors"
	"fmt"
	"image"

	"FractalRenderer/coloring"
	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"FractalRenderer/render"
	"github.com/BrugadaSyndrome/bslogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const MaxAntialiasing = 4

/*
	Stages reported while an export runs, with their progress percentage.
	start: 0
	preCompute: 5
	postCompute: 70
	preSave: 80
	done: 100
*/
const (
	Start Stage = iota
	PreCompute
	PostCompute
	PreSave
	Done
)

type Stage int

func (s Stage) String() string {
	return []string{
		"Start", "PreCompute", "PostCompute", "PreSave", "Done",
	}[s]
}

func (s Stage) Percent() int {
	return []int{0, 5, 70, 80, 100}[s]
}

// Request describes one export. Zero values mean "use the session's current choice".
type Request struct {
	Width          int
	Height         int
	MaxIterations  int
	Antialiasing   int
	KernelName     string
	KernelParams   fractal.Parameters
	ColoringName   string
	ColoringParams fractal.Parameters
	PackName       string
	MapName        string
	// View, when set, replaces the session's view.
	View *fractal.ViewParameters
}

func (r Request) String() string {
	return fmt.Sprintf("{Export %dx%d AA: %d Kernel: %q Coloring: %q Map: %q/%q}",
		r.Width, r.Height, r.Antialiasing, r.KernelName, r.ColoringName, r.PackName, r.MapName)
}

// Defaults is the snapshot of a session an export starts from.
type Defaults struct {
	View           fractal.ViewParameters
	KernelName     string
	KernelParams   fractal.Parameters
	ColoringName   string
	ColoringParams fractal.Parameters
	PackName       string
	MapName        string
}

// Saver persists a finished image, for example by encoding it to a file.
type Saver interface {
	Save(ctx context.Context, img *image.RGBA) error
}

// Outcome is the final state of an export. Message is short enough to show to a user.
type Outcome struct {
	Image     *image.RGBA
	Err       error
	Cancelled bool
	Message   string
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil && !o.Cancelled && o.Image != nil
}

// Pipeline renders supersampled images and downsamples them to the requested size.
type Pipeline struct {
	kernels   *fractal.Registry
	colorings *coloring.Registry
	colors    *colormap.Repository
	computer  *render.GridComputer
	colorizer *render.Colorizer
	tracer    trace.Tracer
	logger    bslogger.Logger
}

func NewPipeline(kernels *fractal.Registry, colorings *coloring.Registry, colors *colormap.Repository) *Pipeline {
	return &Pipeline{
		kernels:   kernels,
		colorings: colorings,
		colors:    colors,
		computer:  render.NewGridComputer(),
		colorizer: render.NewColorizer(),
		tracer:    otel.Tracer("FractalRenderer/export"),
		logger:    bslogger.NewLogger("ExportPipeline", bslogger.Normal, nil),
	}
}

type plan struct {
	kernel         fractal.Kernel
	kernelParams   fractal.Parameters
	algorithm      coloring.Algorithm
	coloringParams fractal.Parameters
	cmap           colormap.ColorMap
	view           fractal.ViewParameters
	factor         int
}

// resolve picks the components of an export. Overrides win; a component's session parameters
// are used only when the session has that same component selected.
func (p *Pipeline) resolve(req Request, defaults Defaults) (plan, error) {
	var pl plan
	if req.Width <= 0 || req.Height <= 0 {
		return pl, &misc.ConfigurationError{What: "image size", Name: fmt.Sprintf("%dx%d", req.Width, req.Height), Err: misc.ErrInvalidSize}
	}

	kernelName := firstNonEmpty(req.KernelName, defaults.KernelName)
	kernel, err := p.kernels.Get(kernelName)
	if err != nil {
		return pl, err
	}
	pl.kernel = kernel
	pl.kernelParams = layer(kernel.ParametersDefinition(), kernelName == defaults.KernelName, defaults.KernelParams, req.KernelParams)

	coloringName := firstNonEmpty(req.ColoringName, defaults.ColoringName)
	algorithm, err := p.colorings.Get(coloringName)
	if err != nil {
		return pl, err
	}
	pl.algorithm = algorithm
	pl.coloringParams = layer(algorithm.ParametersDefinition(), coloringName == defaults.ColoringName, defaults.ColoringParams, req.ColoringParams)

	packName := firstNonEmpty(req.PackName, defaults.PackName)
	mapName := firstNonEmpty(req.MapName, defaults.MapName)
	pl.cmap, err = p.colors.Map(packName, mapName)
	if err != nil {
		p.logger.Warningf("Color map %s/%s unavailable (%s), exporting with the gray fallback", packName, mapName, err)
		pl.cmap = colormap.Fallback()
	}

	pl.factor = req.Antialiasing
	if pl.factor < 1 || pl.factor > MaxAntialiasing {
		p.logger.Warningf("Antialiasing factor %d is not supported, exporting without it", req.Antialiasing)
		pl.factor = 1
	}

	pl.view = defaults.View
	if req.View != nil {
		pl.view = *req.View
	}
	if req.MaxIterations > 0 {
		pl.view.MaxIterations = req.MaxIterations
	}
	_ = pl.view.Verify()
	pl.view = pl.view.WithAspect(req.Width*pl.factor, req.Height*pl.factor)
	return pl, nil
}

func layer(definitions []fractal.ParameterDescriptor, sameAsSession bool, session fractal.Parameters, overrides fractal.Parameters) fractal.Parameters {
	params := fractal.Defaults(definitions)
	if sameAsSession {
		params = params.Merge(session)
	}
	return fractal.Resolve(definitions, params.Merge(overrides))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Run executes one export. Cancellation of ctx is checked before every stage; once it is seen
// nothing is saved. progress, when not nil, is called at each stage. saver may be nil.
func (p *Pipeline) Run(ctx context.Context, req Request, defaults Defaults, saver Saver, progress func(Stage)) Outcome {
	ctx, span := p.tracer.Start(ctx, "export", trace.WithAttributes(
		attribute.Int("export.width", req.Width),
		attribute.Int("export.height", req.Height),
		attribute.Int("export.antialiasing", req.Antialiasing),
	))
	defer span.End()

	outcome := p.run(ctx, req, defaults, saver, progress)
	switch {
	case outcome.Cancelled:
		span.SetAttributes(attribute.Bool("export.cancelled", true))
		p.logger.Infof("Export %v cancelled", req)
	case outcome.Err != nil:
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Message)
		misc.CheckError(outcome.Err, p.logger, misc.Error)
	default:
		p.logger.Infof("Export %v finished", req)
	}
	return outcome
}

func (p *Pipeline) run(ctx context.Context, req Request, defaults Defaults, saver Saver, progress func(Stage)) Outcome {
	checkpoint := func(stage Stage) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w before %s: %w", misc.ErrCancelled, stage, err)
		}
		if progress != nil {
			progress(stage)
		}
		return nil
	}

	if err := checkpoint(Start); err != nil {
		return failed(err)
	}
	pl, err := p.resolve(req, defaults)
	if err != nil {
		return failed(err)
	}
	ssWidth, ssHeight := req.Width*pl.factor, req.Height*pl.factor
	p.logger.Debugf("Supersampling %s at %dx%d (factor %d)", pl.kernel.Name(), ssWidth, ssHeight, pl.factor)

	if err := checkpoint(PreCompute); err != nil {
		return failed(err)
	}
	_, computeSpan := p.tracer.Start(ctx, "export.compute", trace.WithAttributes(
		attribute.String("kernel", pl.kernel.Name()),
		attribute.Int("width", ssWidth),
		attribute.Int("height", ssHeight),
	))
	result, err := p.computer.Compute(pl.kernel, pl.view, pl.kernelParams, ssWidth, ssHeight)
	computeSpan.End()
	if err != nil {
		return failed(err)
	}

	if err := checkpoint(PostCompute); err != nil {
		return failed(err)
	}
	_, colorSpan := p.tracer.Start(ctx, "export.colorize", trace.WithAttributes(
		attribute.String("algorithm", pl.algorithm.Name()),
	))
	img, err := p.colorizer.Colorize(pl.algorithm, result, pl.view, pl.coloringParams, pl.cmap, ssWidth, ssHeight)
	colorSpan.End()
	if err != nil {
		return failed(err)
	}

	_, downSpan := p.tracer.Start(ctx, "export.downsample", trace.WithAttributes(
		attribute.Int("factor", pl.factor),
	))
	img, err = Downsample(img, req.Width, req.Height, pl.factor)
	downSpan.End()
	if err != nil {
		return failed(&misc.ComputationError{Stage: "downsample", Err: err})
	}

	if err := checkpoint(PreSave); err != nil {
		return failed(err)
	}
	if saver != nil {
		saveCtx, saveSpan := p.tracer.Start(ctx, "export.save")
		err = saver.Save(saveCtx, img)
		saveSpan.End()
		if err != nil {
			return failed(&misc.ComputationError{Stage: "save", Err: err})
		}
	}

	if err := checkpoint(Done); err != nil {
		return failed(err)
	}
	return Outcome{Image: img, Message: fmt.Sprintf("Exported %dx%d image", req.Width, req.Height)}
}

func failed(err error) Outcome {
	return Outcome{
		Err:       err,
		Cancelled: errors.Is(err, misc.ErrCancelled),
		Message:   misc.Describe(err),
	}
}
