package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"FractalRenderer/misc"
	"github.com/BrugadaSyndrome/bslogger"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

type Format string

// FormatFor picks an image format from a file name's extension.
func FormatFor(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".bmp":
		return BMP, nil
	default:
		return "", &misc.ConfigurationError{What: "image format", Name: filepath.Ext(fileName), Err: misc.ErrNotFound}
	}
}

// Encode writes img in format. quality only applies to JPEG.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		return bmp.Encode(w, img)
	default:
		return &misc.ConfigurationError{What: "image format", Name: string(format), Err: misc.ErrNotFound}
	}
}

// FileSaver writes exported images to a file.
type FileSaver struct {
	logger   bslogger.Logger
	FileName string
	Format   Format
	Quality  int
}

func NewFileSaver(fileName string, quality int) (*FileSaver, error) {
	format, err := FormatFor(fileName)
	if err != nil {
		return nil, err
	}
	return &FileSaver{
		logger:   bslogger.NewLogger("FileSaver", bslogger.Normal, nil),
		FileName: fileName,
		Format:   format,
		Quality:  quality,
	}, nil
}

func (fs *FileSaver) Save(ctx context.Context, img *image.RGBA) error {
	var buffer bytes.Buffer
	if err := Encode(&buffer, img, fs.Format, fs.Quality); err != nil {
		return fmt.Errorf("unable to encode %s - %w", fs.FileName, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	written, err := misc.WriteFile(fs.FileName, buffer.Bytes())
	if err != nil {
		return err
	}
	fs.logger.Infof("Saved %s (%d bytes)", fs.FileName, written)
	return nil
}
