package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"FractalRenderer/coloring"
	"FractalRenderer/colormap"
	"FractalRenderer/export"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"FractalRenderer/render"
	"github.com/BrugadaSyndrome/bslogger"
)

const (
	DefaultImageWidth  = 800
	DefaultImageHeight = 600
)

// Options picks the components a new Session starts with. Empty names take the first
// registered entry.
type Options struct {
	ImageWidth  int
	ImageHeight int
	Kernel      string
	Coloring    string
	Pack        string
	Map         string
}

// Session is one interactive view of a fractal: what is looked at, how it is coloured and the
// last computed grid. Its methods are safe for concurrent use; independent sessions share no
// state.
type Session struct {
	lock   sync.Mutex
	logger bslogger.Logger

	kernels   *fractal.Registry
	colorings *coloring.Registry
	colors    *colormap.Repository
	computer  *render.GridComputer
	colorizer *render.Colorizer
	exporter  *export.Exporter

	view           fractal.ViewParameters
	imageWidth     int
	imageHeight    int
	kernel         fractal.Kernel
	kernelParams   fractal.Parameters
	algorithm      coloring.Algorithm
	coloringParams fractal.Parameters
	packName       string
	mapName        string

	cache     *fractal.Result
	lastImage *image.RGBA
	status    string
}

func NewSession(kernels *fractal.Registry, colorings *coloring.Registry, colors *colormap.Repository, options Options) (*Session, error) {
	s := &Session{
		logger:      bslogger.NewLogger("Session", bslogger.Normal, nil),
		kernels:     kernels,
		colorings:   colorings,
		colors:      colors,
		computer:    render.NewGridComputer(),
		colorizer:   render.NewColorizer(),
		exporter:    export.NewExporter(export.NewPipeline(kernels, colorings, colors)),
		imageWidth:  options.ImageWidth,
		imageHeight: options.ImageHeight,
		packName:    options.Pack,
		mapName:     options.Map,
		status:      "Ready",
	}
	if s.imageWidth <= 0 {
		s.imageWidth = DefaultImageWidth
	}
	if s.imageHeight <= 0 {
		s.imageHeight = DefaultImageHeight
	}

	if err := s.selectKernel(firstName(options.Kernel, kernels.Names())); err != nil {
		return nil, err
	}
	if err := s.selectColoring(firstName(options.Coloring, colorings.Names())); err != nil {
		return nil, err
	}
	if s.packName == "" {
		if packs := colors.Packs(); len(packs) > 0 {
			s.packName = packs[0]
		}
	}
	if s.mapName == "" && s.packName != "" {
		if maps, err := colors.Maps(s.packName); err == nil && len(maps) > 0 {
			s.mapName = maps[0]
		}
	}
	return s, nil
}

func firstName(name string, names []string) string {
	if name != "" || len(names) == 0 {
		return name
	}
	return names[0]
}

// View returns the current view with its height matching the image aspect.
func (s *Session) View() fractal.ViewParameters {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.view.WithAspect(s.imageWidth, s.imageHeight)
}

func (s *Session) SetView(view fractal.ViewParameters) {
	s.lock.Lock()
	defer s.lock.Unlock()

	_ = view.Verify()
	s.view = view.WithAspect(s.imageWidth, s.imageHeight)
	s.invalidate()
}

func (s *Session) SetImageSize(width int, height int) error {
	if width <= 0 || height <= 0 {
		return &misc.ConfigurationError{What: "image size", Name: fmt.Sprintf("%dx%d", width, height), Err: misc.ErrInvalidSize}
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	s.imageWidth, s.imageHeight = width, height
	s.view = s.view.WithAspect(width, height)
	s.invalidate()
	return nil
}

func (s *Session) ImageSize() (int, int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.imageWidth, s.imageHeight
}

// SelectKernel switches kernel, resetting the view and parameters to the kernel's defaults.
func (s *Session) SelectKernel(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.selectKernel(name)
}

func (s *Session) selectKernel(name string) error {
	kernel, err := s.kernels.Get(name)
	if err != nil {
		return err
	}
	s.kernel = kernel
	s.kernelParams = fractal.Defaults(kernel.ParametersDefinition())
	s.view = kernel.DefaultView().WithAspect(s.imageWidth, s.imageHeight)
	s.invalidate()
	s.logger.Infof("Selected kernel %s", name)
	return nil
}

func (s *Session) SelectColoring(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.selectColoring(name)
}

func (s *Session) selectColoring(name string) error {
	algorithm, err := s.colorings.Get(name)
	if err != nil {
		return err
	}
	s.algorithm = algorithm
	s.coloringParams = fractal.Defaults(algorithm.ParametersDefinition())
	s.logger.Infof("Selected coloring %s", name)
	return nil
}

func (s *Session) SelectColorMap(pack string, name string) error {
	if _, err := s.colors.Map(pack, name); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.packName, s.mapName = pack, name
	return nil
}

// ApplyPreset sets the kernel parameters to a named preset of the current kernel.
func (s *Session) ApplyPreset(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	preset, err := fractal.FindPreset(s.kernel, name)
	if err != nil {
		return err
	}
	s.kernelParams = fractal.Resolve(s.kernel.ParametersDefinition(), s.kernelParams.Merge(preset.Params))
	s.invalidate()
	return nil
}

func (s *Session) SetKernelParameter(name string, value float64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, err := findDescriptor(s.kernel.ParametersDefinition(), "kernel parameter", name)
	if err != nil {
		return err
	}
	s.kernelParams[name] = d.Clamp(value)
	s.invalidate()
	return nil
}

func (s *Session) SetColoringParameter(name string, value float64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, err := findDescriptor(s.algorithm.ParametersDefinition(), "coloring parameter", name)
	if err != nil {
		return err
	}
	s.coloringParams[name] = d.Clamp(value)
	return nil
}

func findDescriptor(definitions []fractal.ParameterDescriptor, what string, name string) (fractal.ParameterDescriptor, error) {
	for _, d := range definitions {
		if d.Name == name {
			return d, nil
		}
	}
	return fractal.ParameterDescriptor{}, &misc.ConfigurationError{What: what, Name: name, Err: misc.ErrNotFound}
}

func (s *Session) KernelParameters() fractal.Parameters {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.kernelParams.Clone()
}

func (s *Session) ColoringParameters() fractal.Parameters {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.coloringParams.Clone()
}

func (s *Session) invalidate() {
	s.cache = nil
}

// Recompute runs the kernel and colours the result. On failure the cache is cleared, the last
// good image is kept and the status explains what happened.
func (s *Session) Recompute() (*image.RGBA, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	view := s.view.WithAspect(s.imageWidth, s.imageHeight)
	result, err := s.computer.Compute(s.kernel, view, s.kernelParams, s.imageWidth, s.imageHeight)
	if err != nil {
		s.cache = nil
		s.status = misc.Describe(err)
		return nil, err
	}
	s.cache = result
	return s.recolor()
}

// Recolor colours the cached grid again. ErrCacheEmpty means Recompute has to run first.
func (s *Session) Recolor() (*image.RGBA, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cache == nil {
		return nil, misc.ErrCacheEmpty
	}
	return s.recolor()
}

func (s *Session) recolor() (*image.RGBA, error) {
	cmap, err := s.colors.Map(s.packName, s.mapName)
	if err != nil {
		s.status = misc.Describe(err)
		return nil, err
	}
	view := s.view.WithAspect(s.imageWidth, s.imageHeight)
	img, err := s.colorizer.Colorize(s.algorithm, s.cache, view, s.coloringParams, cmap, s.imageWidth, s.imageHeight)
	if err != nil {
		s.status = misc.Describe(err)
		return nil, err
	}
	s.lastImage = img
	s.status = fmt.Sprintf("Rendered %s with %s coloring", s.kernel.Name(), s.algorithm.Name())
	return img, nil
}

// Render colours the cache when there is one and recomputes otherwise.
func (s *Session) Render() (*image.RGBA, error) {
	img, err := s.Recolor()
	if errors.Is(err, misc.ErrCacheEmpty) {
		return s.Recompute()
	}
	return img, err
}

// LastImage is the most recent successfully rendered image, or nil.
func (s *Session) LastImage() *image.RGBA {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastImage
}

func (s *Session) Status() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status
}

func (s *Session) Kernels() []string {
	return s.kernels.Names()
}

func (s *Session) Kernel(name string) (fractal.Kernel, error) {
	return s.kernels.Get(name)
}

func (s *Session) Colorings() []string {
	return s.colorings.Names()
}

func (s *Session) ColorPacks() []string {
	return s.colors.Packs()
}

func (s *Session) ColorMaps(pack string) ([]string, error) {
	return s.colors.Maps(pack)
}

// ReloadColorPacks re-reads every colour pack source. The selected map is kept when it still
// exists.
func (s *Session) ReloadColorPacks(ctx context.Context) error {
	if err := s.colors.Reload(ctx); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, err := s.colors.Map(s.packName, s.mapName); err != nil {
		s.logger.Warningf("Selected map %s/%s is gone after reload", s.packName, s.mapName)
	}
	return nil
}

// Presets lists the preset names of the current kernel.
func (s *Session) Presets() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	provider, ok := s.kernel.(fractal.PresetProvider)
	if !ok {
		return nil
	}
	names := make([]string, 0)
	for _, p := range provider.Presets() {
		names = append(names, p.Name)
	}
	return names
}

// Snapshot captures the selections an export starts from.
func (s *Session) Snapshot() export.Defaults {
	s.lock.Lock()
	defer s.lock.Unlock()
	return export.Defaults{
		View:           s.view,
		KernelName:     s.kernel.Name(),
		KernelParams:   s.kernelParams.Clone(),
		ColoringName:   s.algorithm.Name(),
		ColoringParams: s.coloringParams.Clone(),
		PackName:       s.packName,
		MapName:        s.mapName,
	}
}

// StartExport launches an export from a snapshot of the session. Only one export runs per
// session at a time.
func (s *Session) StartExport(ctx context.Context, req export.Request, saver export.Saver) (*export.Job, error) {
	job, err := s.exporter.Start(ctx, req, s.Snapshot(), saver)
	if err != nil {
		s.lock.Lock()
		s.status = misc.Describe(err)
		s.lock.Unlock()
		return nil, err
	}
	s.logger.Infof("Started export %s %v", job.ID, req)
	return job, nil
}

// Export runs an export and waits for it to finish.
func (s *Session) Export(ctx context.Context, req export.Request, saver export.Saver) export.Outcome {
	job, err := s.StartExport(ctx, req, saver)
	if err != nil {
		return export.Outcome{Err: err, Message: misc.Describe(err)}
	}
	outcome := job.Outcome()

	s.lock.Lock()
	s.status = outcome.Message
	s.lock.Unlock()
	return outcome
}
