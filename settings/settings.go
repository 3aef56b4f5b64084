package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"FractalRenderer/colormap"
	"FractalRenderer/fractal"
	"FractalRenderer/misc"
	"FractalRenderer/telemetry"
	"github.com/BrugadaSyndrome/bslogger"
	"github.com/caarlos0/env/v11"
)

const (
	DefaultServerPort  = "51000"
	DefaultJPEGQuality = 90
)

// Settings configures the command line and the render server. Values come from an optional
// JSON file, then FRACTAL_* environment variables, then Verify fills the gaps.
type Settings struct {
	logger bslogger.Logger

	ColorPackDirs []string `json:"colorPackDirs" env:"FRACTAL_COLOR_PACK_DIRS"`
	PackDatabase  string   `json:"packDatabase" env:"FRACTAL_PACK_DATABASE"`
	ImageWidth    int      `json:"imageWidth" env:"FRACTAL_IMAGE_WIDTH"`
	ImageHeight   int      `json:"imageHeight" env:"FRACTAL_IMAGE_HEIGHT"`
	Kernel        string   `json:"kernel" env:"FRACTAL_KERNEL"`
	Coloring      string   `json:"coloring" env:"FRACTAL_COLORING"`
	Pack          string   `json:"pack" env:"FRACTAL_PACK"`
	Map           string   `json:"map" env:"FRACTAL_MAP"`
	MaxIterations int      `json:"maxIterations" env:"FRACTAL_MAX_ITERATIONS"`
	Antialiasing  int      `json:"antialiasing" env:"FRACTAL_ANTIALIASING"`
	JPEGQuality   int      `json:"jpegQuality" env:"FRACTAL_JPEG_QUALITY"`
	ServerAddress string   `json:"serverAddress" env:"FRACTAL_SERVER_ADDRESS"`
	SavePath      string   `json:"savePath" env:"FRACTAL_SAVE_PATH"`

	Telemetry telemetry.Config `json:"telemetry"`
}

// Load reads settingsFile (skipped when empty), applies the environment and verifies the result.
func Load(settingsFile string) (Settings, error) {
	s := Settings{
		logger: bslogger.NewLogger("Settings", bslogger.Normal, nil),
	}
	if settingsFile != "" {
		fileBytes, err := misc.ReadFile(settingsFile)
		if err != nil {
			return s, err
		}
		if err := json.Unmarshal(fileBytes, &s); err != nil {
			return s, fmt.Errorf("unable to parse %s - %w", settingsFile, err)
		}
	}
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Verify(); err != nil {
		return s, err
	}
	s.logger.Debug(s.String())
	return s, nil
}

// NewSettings is Load for program start up: any error is fatal.
func NewSettings(settingsFile string) Settings {
	s, err := Load(settingsFile)
	misc.CheckError(err, s.logger, misc.Fatal)
	return s
}

func (s *Settings) String() string {
	output := "\nSettings\n"
	output += fmt.Sprintf("Image: %dx%d AA: %d Iterations: %d\n", s.ImageWidth, s.ImageHeight, s.Antialiasing, s.MaxIterations)
	output += fmt.Sprintf("Kernel: %s Coloring: %s Map: %s/%s\n", s.Kernel, s.Coloring, s.Pack, s.Map)
	output += fmt.Sprintf("Color pack dirs: %s Pack database: %s\n", strings.Join(s.ColorPackDirs, ", "), s.PackDatabase)
	output += fmt.Sprintf("Server Address: %s Save Path: %s\n", s.ServerAddress, s.SavePath)
	return output
}

func (s *Settings) Verify() error {
	if s.ImageWidth <= 0 {
		s.ImageWidth = 800
	}
	if s.ImageHeight <= 0 {
		s.ImageHeight = 600
	}
	if s.Kernel == "" {
		s.Kernel = "Mandelbrot"
	}
	if s.Coloring == "" {
		s.Coloring = "Smooth"
	}
	if s.Pack == "" {
		s.Pack = colormap.BuiltinPack
	}
	if s.Map == "" {
		s.Map = "Grayscale"
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = fractal.DefaultMaxIterations
	}
	if s.Antialiasing < 1 || s.Antialiasing > 4 {
		s.Antialiasing = 1
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		s.JPEGQuality = DefaultJPEGQuality
	}
	if s.SavePath == "" {
		s.SavePath, _ = os.Getwd()
	}
	if s.ServerAddress == "" {
		address, err := misc.GetLocalAddress()
		if misc.CheckError(err, s.logger, misc.Warning) {
			address = "127.0.0.1"
		}
		s.ServerAddress = fmt.Sprintf("%s:%s", address, DefaultServerPort)
	}

	dirs := make([]string, 0, len(s.ColorPackDirs))
	for _, dir := range s.ColorPackDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	s.ColorPackDirs = dirs
	return nil
}
