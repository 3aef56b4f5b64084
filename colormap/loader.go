package colormap

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"math"
)

const defaultGradientColors = 256

type packFile struct {
	PackName string            `json:"pack_name"`
	Maps     []json.RawMessage `json:"maps"`
}

type mapRecord struct {
	MapName        string            `json:"map_name"`
	Colors         []json.RawMessage `json:"colors"`
	GradientPoints []json.RawMessage `json:"gradient_points"`
	NumColors      *float64          `json:"num_colors"`
}

type stopRecord struct {
	Pos   *float64        `json:"pos"`
	Color json.RawMessage `json:"color"`
}

// parsePack decodes one pack definition. Malformed maps are skipped and reported through warn;
// an error is returned only when nothing usable is left.
func parsePack(data []byte, origin string, warn func(string)) (*Pack, error) {
	var file packFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s is not a valid color pack: %w", origin, err)
	}
	if file.PackName == "" {
		return nil, fmt.Errorf("%s has no pack_name", origin)
	}

	pack := newPack(file.PackName)
	for i, raw := range file.Maps {
		name, cmap, err := parseMap(raw, func(message string) {
			warn(fmt.Sprintf("Map %d of pack %s in %s: %s", i, file.PackName, origin, message))
		})
		if err != nil {
			warn(fmt.Sprintf("Skipping map %d of pack %s in %s: %s", i, file.PackName, origin, err))
			continue
		}
		if pack.has(name) {
			warn(fmt.Sprintf("Map %s appears twice in pack %s in %s, keeping the later one", name, file.PackName, origin))
		}
		pack.set(name, cmap)
	}
	if pack.Len() == 0 {
		return nil, fmt.Errorf("pack %s in %s has no valid maps", file.PackName, origin)
	}
	return pack, nil
}

// parseMap decodes one map. Bad entries of a colors list are skipped through warn; the map
// fails only when none is left.
func parseMap(raw json.RawMessage, warn func(string)) (string, ColorMap, error) {
	var record mapRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return "", nil, err
	}
	if record.MapName == "" {
		return "", nil, errors.New("missing map_name")
	}

	if len(record.Colors) > 0 {
		cmap := make(ColorMap, 0, len(record.Colors))
		for _, rawColor := range record.Colors {
			c, err := parseColor(rawColor)
			if err != nil {
				warn(fmt.Sprintf("skipping %s", err))
				continue
			}
			cmap = append(cmap, c)
		}
		if len(cmap) == 0 {
			return "", nil, errors.New("no valid colors")
		}
		return record.MapName, cmap, nil
	}

	if len(record.GradientPoints) > 0 {
		stops := make([]ColorStop, 0, len(record.GradientPoints))
		for _, rawStop := range record.GradientPoints {
			var stop stopRecord
			if err := json.Unmarshal(rawStop, &stop); err != nil {
				return "", nil, fmt.Errorf("bad gradient point: %w", err)
			}
			if stop.Pos == nil || *stop.Pos < 0 || *stop.Pos > 1 {
				return "", nil, errors.New("gradient point position must be within [0, 1]")
			}
			c, err := parseColor(stop.Color)
			if err != nil {
				return "", nil, err
			}
			stops = append(stops, ColorStop{Position: *stop.Pos, Color: c})
		}
		count := defaultGradientColors
		if record.NumColors != nil {
			if *record.NumColors < 1 || *record.NumColors != math.Trunc(*record.NumColors) {
				return "", nil, errors.New("num_colors must be a positive integer")
			}
			count = int(*record.NumColors)
		}
		return record.MapName, GenerateGradient(stops, count), nil
	}

	return "", nil, errors.New("map has neither colors nor gradient_points")
}

func parseColor(raw json.RawMessage) (color.RGBA, error) {
	var channels []float64
	if err := json.Unmarshal(raw, &channels); err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %s", string(raw))
	}
	if len(channels) != 3 {
		return color.RGBA{}, fmt.Errorf("color %s is not an RGB triple", string(raw))
	}
	var rgb [3]uint8
	for i, v := range channels {
		if v < 0 || v > 255 || v != math.Trunc(v) {
			return color.RGBA{}, fmt.Errorf("color %s has a channel outside 0..255", string(raw))
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}, nil
}
