package colormap_test

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"FractalRenderer/colormap"
	"FractalRenderer/misc"
)

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func TestGenerateGradientEndpoints(t *testing.T) {
	stops := []colormap.ColorStop{
		{Position: 0, Color: rgb(0, 0, 0)},
		{Position: 1, Color: rgb(240, 240, 240)},
	}
	gradient := colormap.GenerateGradient(stops, 16)
	if len(gradient) != 16 {
		t.Fatalf("got %d colors, want 16", len(gradient))
	}
	if gradient[0] != rgb(0, 0, 0) {
		t.Fatalf("first color = %v", gradient[0])
	}
	if gradient[15] != rgb(240, 240, 240) {
		t.Fatalf("last color = %v", gradient[15])
	}
	if gradient[1] != rgb(16, 16, 16) {
		t.Fatalf("second color = %v, want 16 gray", gradient[1])
	}
}

func TestGenerateGradientClampsOutsideStops(t *testing.T) {
	stops := []colormap.ColorStop{
		{Position: 0.75, Color: rgb(0, 0, 255)},
		{Position: 0.25, Color: rgb(255, 0, 0)},
	}
	gradient := colormap.GenerateGradient(stops, 5)
	want := []color.RGBA{rgb(255, 0, 0), rgb(255, 0, 0), rgb(128, 0, 128), rgb(0, 0, 255), rgb(0, 0, 255)}
	for i, c := range want {
		if gradient[i] != c {
			t.Fatalf("gradient[%d] = %v, want %v", i, gradient[i], c)
		}
	}
}

func TestGenerateGradientEdgeCases(t *testing.T) {
	if got := colormap.GenerateGradient(nil, 4); len(got) != 4 || got[3] != rgb(0, 0, 0) {
		t.Fatalf("empty stops should give black, got %v", got)
	}
	if got := colormap.GenerateGradient([]colormap.ColorStop{{Position: 0.5, Color: rgb(1, 2, 3)}}, 0); len(got) != 0 {
		t.Fatalf("zero count should give an empty map, got %v", got)
	}
	single := colormap.GenerateGradient([]colormap.ColorStop{
		{Position: 0, Color: rgb(10, 20, 30)},
		{Position: 1, Color: rgb(200, 200, 200)},
	}, 1)
	if len(single) != 1 || single[0] != rgb(10, 20, 30) {
		t.Fatalf("count 1 should sample position 0, got %v", single)
	}
}

func TestColorMapAtWraps(t *testing.T) {
	cmap := colormap.ColorMap{rgb(1, 1, 1), rgb(2, 2, 2), rgb(3, 3, 3)}
	if cmap.At(-1) != rgb(3, 3, 3) {
		t.Fatalf("At(-1) = %v", cmap.At(-1))
	}
	if cmap.At(4) != rgb(2, 2, 2) {
		t.Fatalf("At(4) = %v", cmap.At(4))
	}
}

const oceanPack = `{
  "pack_name": "Ocean",
  "maps": [
    {"map_name": "Deep", "colors": [[0, 0, 40], [0, 60, 120], [200, 240, 255]]},
    {"map_name": "Shallow", "gradient_points": [{"pos": 0, "color": [0, 80, 80]}, {"pos": 1, "color": [0, 240, 240]}], "num_colors": 8},
    {"colors": [[1, 2, 3]]},
    {"map_name": "Broken", "colors": [[1, 2]]},
    {"map_name": "TooBright", "colors": [[300, 0, 0]]}
  ]
}`

func TestLoadJSONSkipsMalformedMaps(t *testing.T) {
	repo := colormap.NewRepository()
	repo.LoadJSON([]byte(oceanPack), "ocean.json")

	maps, err := repo.Maps("Ocean")
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(maps) != 2 || maps[0] != "Deep" || maps[1] != "Shallow" {
		t.Fatalf("maps = %v, want [Deep Shallow]", maps)
	}
	shallow, err := repo.Map("Ocean", "Shallow")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(shallow) != 8 || shallow[7] != rgb(0, 240, 240) {
		t.Fatalf("unexpected gradient %v", shallow)
	}
}

func TestLoadJSONSkipsMalformedColors(t *testing.T) {
	repo := colormap.NewRepository()
	repo.LoadJSON([]byte(`{"pack_name": "P", "maps": [{"map_name": "M", "colors": [[255, 0, 0], [1, 2], [0, 0, 255], [0, 300, 0], "red"]}]}`), "partial.json")

	cmap, err := repo.Map("P", "M")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := colormap.ColorMap{rgb(255, 0, 0), rgb(0, 0, 255)}
	if len(cmap) != len(want) || cmap[0] != want[0] || cmap[1] != want[1] {
		t.Fatalf("map = %v, want %v", cmap, want)
	}
}

func TestLoadJSONDropsUnusablePacks(t *testing.T) {
	repo := colormap.NewRepository()
	repo.LoadJSON([]byte(`{"pack_name": "Empty", "maps": [{"map_name": "x", "colors": [[1]]}]}`), "empty.json")
	repo.LoadJSON([]byte(`{"maps": []}`), "nameless.json")
	repo.LoadJSON([]byte(`not json`), "garbage.json")

	if packs := repo.Packs(); len(packs) != 0 {
		t.Fatalf("expected no packs, got %v", packs)
	}
}

func TestDuplicatePacksMerge(t *testing.T) {
	repo := colormap.NewRepository()
	repo.LoadJSON([]byte(`{"pack_name": "P", "maps": [{"map_name": "A", "colors": [[1,1,1]]}, {"map_name": "B", "colors": [[2,2,2]]}]}`), "first.json")
	repo.LoadJSON([]byte(`{"pack_name": "P", "maps": [{"map_name": "B", "colors": [[9,9,9]]}, {"map_name": "C", "colors": [[3,3,3]]}]}`), "second.json")

	maps, err := repo.Maps("P")
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(maps) != 3 {
		t.Fatalf("maps = %v, want A B C", maps)
	}
	b, err := repo.Map("P", "B")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if b[0] != rgb(9, 9, 9) {
		t.Fatalf("later definition should win, got %v", b[0])
	}
}

func TestMapNotFound(t *testing.T) {
	repo := colormap.NewRepository()
	repo.LoadBuiltin()

	_, err := repo.Map("Nope", "Grayscale")
	var configErr *misc.ConfigurationError
	if !errors.As(err, &configErr) || !errors.Is(err, misc.ErrNotFound) {
		t.Fatalf("expected a not found configuration error, got %v", err)
	}
	if _, err := repo.Map(colormap.BuiltinPack, "Nope"); !errors.Is(err, misc.ErrNotFound) {
		t.Fatalf("expected not found for unknown map, got %v", err)
	}
	fire, err := repo.Map(colormap.BuiltinPack, "Fire")
	if err != nil || len(fire) != 256 {
		t.Fatalf("Fire map: %v (len %d)", err, len(fire))
	}
}

func TestLoadDirAndReload(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("b.json", `{"pack_name": "Second", "maps": [{"map_name": "M", "colors": [[1,1,1]]}]}`)
	write("a.json", `{"pack_name": "First", "maps": [{"map_name": "M", "colors": [[2,2,2]]}]}`)
	write("notes.txt", `ignored`)

	repo := colormap.NewRepository()
	if err := repo.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	packs := repo.Packs()
	if len(packs) != 2 || packs[0] != "First" || packs[1] != "Second" {
		t.Fatalf("packs = %v", packs)
	}

	write("c.json", `{"pack_name": "Third", "maps": [{"map_name": "M", "colors": [[3,3,3]]}]}`)
	if err := repo.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if packs := repo.Packs(); len(packs) != 3 {
		t.Fatalf("packs after reload = %v", packs)
	}
}

func TestLoadDirMissing(t *testing.T) {
	repo := colormap.NewRepository()
	if err := repo.LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := colormap.OpenStore(filepath.Join(t.TempDir(), "packs.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	if err := store.Save(ctx, "Ocean", []byte(oceanPack)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "Ocean", []byte(oceanPack)); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	definitions, err := store.Definitions(ctx)
	if err != nil {
		t.Fatalf("Definitions: %v", err)
	}
	if len(definitions) != 1 || definitions[0].Name != "Ocean" {
		t.Fatalf("definitions = %v", definitions)
	}

	repo := colormap.NewRepository()
	if err := repo.LoadStore(ctx, store); err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if _, err := repo.Map("Ocean", "Deep"); err != nil {
		t.Fatalf("Map from store: %v", err)
	}
}

func TestFallbackMap(t *testing.T) {
	fallback := colormap.Fallback()
	if len(fallback) != 16 || fallback[0] != rgb(0, 0, 0) || fallback[15] != rgb(240, 240, 240) {
		t.Fatalf("unexpected fallback %v", fallback)
	}
}
