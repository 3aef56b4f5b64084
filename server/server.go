package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FractalRenderer/export"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"FractalRenderer/rpc"
	"FractalRenderer/session"
	"github.com/BrugadaSyndrome/bslogger"
)

// ExportArgs asks the server to render one image.
type ExportArgs struct {
	Request export.Request
}

// ExportReply carries the rendered image as raw RGBA pixels, 4 bytes per pixel, row major.
type ExportReply struct {
	Width   int
	Height  int
	Pix     []byte
	Message string
}

// KernelInfo describes a kernel and its tunable parameters.
type KernelInfo struct {
	Name       string
	Parameters []fractal.ParameterDescriptor
	Presets    []string
	View       fractal.ViewParameters
}

// Renderer is the object served over rpc. Every exported method is an rpc method.
type Renderer struct {
	session *session.Session
	timeout time.Duration
	logger  bslogger.Logger

	mutex    sync.Mutex
	exported uint
	failed   uint
}

func (r *Renderer) Export(args ExportArgs, reply *ExportReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	outcome := r.session.Export(ctx, args.Request, nil)
	r.mutex.Lock()
	if outcome.Succeeded() {
		r.exported++
	} else {
		r.failed++
	}
	r.mutex.Unlock()

	if !outcome.Succeeded() {
		if outcome.Err != nil {
			r.logger.Warningf("Export %v failed: %s", args.Request, outcome.Err)
		}
		return errors.New(outcome.Message)
	}
	reply.Width = outcome.Image.Bounds().Dx()
	reply.Height = outcome.Image.Bounds().Dy()
	reply.Pix = outcome.Image.Pix
	reply.Message = outcome.Message
	return nil
}

func (r *Renderer) Kernels(nothing misc.Nothing, reply *[]KernelInfo) error {
	infos := make([]KernelInfo, 0)
	for _, name := range r.session.Kernels() {
		kernel, err := r.session.Kernel(name)
		if err != nil {
			continue
		}
		info := KernelInfo{Name: name, Parameters: kernel.ParametersDefinition(), View: kernel.DefaultView()}
		if provider, ok := kernel.(fractal.PresetProvider); ok {
			for _, p := range provider.Presets() {
				info.Presets = append(info.Presets, p.Name)
			}
		}
		infos = append(infos, info)
	}
	*reply = infos
	return nil
}

func (r *Renderer) Colorings(nothing misc.Nothing, reply *[]string) error {
	*reply = r.session.Colorings()
	return nil
}

func (r *Renderer) ColorPacks(nothing misc.Nothing, reply *[]string) error {
	*reply = r.session.ColorPacks()
	return nil
}

func (r *Renderer) ColorMaps(pack string, reply *[]string) error {
	maps, err := r.session.ColorMaps(pack)
	if err != nil {
		return errors.New(misc.Describe(err))
	}
	*reply = maps
	return nil
}

func (r *Renderer) ReloadColorPacks(nothing misc.Nothing, packs *[]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.session.ReloadColorPacks(ctx); err != nil {
		r.logger.Warningf("Reloading color packs: %s", err)
		return errors.New("Could not reload color packs")
	}
	*packs = r.session.ColorPacks()
	return nil
}

func (r *Renderer) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

// Server exposes a Session's exports over rpc.
type Server struct {
	logger   bslogger.Logger
	renderer *Renderer
	stop     chan struct{}
	wait     sync.WaitGroup

	Server *rpc.TcpServer
}

// NewServer starts serving s at address. timeout bounds a single export.
func NewServer(s *session.Session, address string, timeout time.Duration) (*Server, error) {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	srv := &Server{
		logger: bslogger.NewLogger("RenderServer", bslogger.Normal, nil),
		renderer: &Renderer{
			session: s,
			timeout: timeout,
			logger:  bslogger.NewLogger("Renderer", bslogger.Normal, nil),
		},
		stop: make(chan struct{}),
	}
	srv.Server = rpc.NewTcpServer(srv.renderer, address, "RenderServer")
	if err := srv.Server.Run(); err != nil {
		return nil, fmt.Errorf("unable to serve at %s - %w", address, err)
	}

	srv.wait.Add(1)
	go srv.heartBeat(30 * time.Second)
	return srv, nil
}

func (srv *Server) heartBeat(interval time.Duration) {
	defer srv.wait.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-srv.stop:
			return
		case <-ticker.C:
			srv.renderer.mutex.Lock()
			exported, failed := srv.renderer.exported, srv.renderer.failed
			srv.renderer.mutex.Unlock()
			srv.logger.Infof("Exports [Completed: %d] [Failed: %d] | %s", exported, failed, srv.renderer.session.Status())
		}
	}
}

func (srv *Server) Address() string {
	return srv.Server.Address()
}

func (srv *Server) Stop() error {
	close(srv.stop)
	srv.wait.Wait()
	return srv.Server.Stop()
}
