package colormap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"FractalRenderer/misc"
	"github.com/BrugadaSyndrome/bslogger"
)

// Pack is a named group of colour maps. Map names keep their load order.
type Pack struct {
	Name  string
	names []string
	maps  map[string]ColorMap
}

func newPack(name string) *Pack {
	return &Pack{Name: name, maps: make(map[string]ColorMap)}
}

func (p *Pack) has(name string) bool {
	_, ok := p.maps[name]
	return ok
}

func (p *Pack) set(name string, cmap ColorMap) {
	if !p.has(name) {
		p.names = append(p.names, name)
	}
	p.maps[name] = cmap
}

func (p *Pack) Len() int {
	return len(p.names)
}

// catalog is the set of packs built from every registered source.
type catalog struct {
	logger bslogger.Logger
	order  []string
	packs  map[string]*Pack
}

func newCatalog(logger bslogger.Logger) *catalog {
	return &catalog{logger: logger, packs: make(map[string]*Pack)}
}

func (c *catalog) merge(pack *Pack) {
	existing, ok := c.packs[pack.Name]
	if !ok {
		c.order = append(c.order, pack.Name)
		c.packs[pack.Name] = pack
		return
	}
	c.logger.Warningf("Color pack %s loaded more than once, merging maps", pack.Name)
	for _, name := range pack.names {
		if existing.has(name) {
			c.logger.Warningf("Map %s in pack %s replaced by a later definition", name, pack.Name)
		}
		existing.set(name, pack.maps[name])
	}
}

func (c *catalog) add(data []byte, origin string) {
	pack, err := parsePack(data, origin, c.logger.Warning)
	if misc.CheckError(err, c.logger, misc.Warning) {
		return
	}
	c.merge(pack)
}

// source feeds packs into a catalog. Sources are replayed in order on Reload.
type source func(ctx context.Context, c *catalog) error

// Repository holds every loaded colour pack. It is safe for concurrent use.
type Repository struct {
	lock    sync.RWMutex
	logger  bslogger.Logger
	sources []source
	current *catalog
}

func NewRepository() *Repository {
	logger := bslogger.NewLogger("ColorMapRepository", bslogger.Normal, nil)
	return &Repository{
		logger:  logger,
		current: newCatalog(logger),
	}
}

func (r *Repository) register(ctx context.Context, src source) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := src(ctx, r.current); err != nil {
		return err
	}
	r.sources = append(r.sources, src)
	return nil
}

// LoadBuiltin adds the Default pack.
func (r *Repository) LoadBuiltin() {
	_ = r.register(context.Background(), func(_ context.Context, c *catalog) error {
		c.merge(Builtin())
		return nil
	})
}

// LoadJSON adds the pack defined in data. Malformed content is logged and skipped.
func (r *Repository) LoadJSON(data []byte, origin string) {
	contents := append([]byte(nil), data...)
	_ = r.register(context.Background(), func(_ context.Context, c *catalog) error {
		c.add(contents, origin)
		return nil
	})
}

// LoadDir adds every *.json pack file in dir, in file name order. Only an unreadable
// directory is an error; bad files are skipped.
func (r *Repository) LoadDir(dir string) error {
	return r.register(context.Background(), func(_ context.Context, c *catalog) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("unable to read color pack directory %s - %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			contents, err := misc.ReadFile(path)
			if misc.CheckError(err, c.logger, misc.Warning) {
				continue
			}
			c.add(contents, path)
		}
		return nil
	})
}

// LoadStore adds every pack saved in store.
func (r *Repository) LoadStore(ctx context.Context, store *Store) error {
	return r.register(ctx, func(ctx context.Context, c *catalog) error {
		definitions, err := store.Definitions(ctx)
		if err != nil {
			return err
		}
		for _, definition := range definitions {
			c.add(definition.JSON, "store:"+definition.Name)
		}
		return nil
	})
}

// Reload rebuilds the repository from every registered source. Readers see either the old
// or the new set of packs, never a mix. On error the old set is kept. A source registered
// while the rebuild runs starts the rebuild over so it is not lost.
func (r *Repository) Reload(ctx context.Context) error {
	for {
		r.lock.RLock()
		sources := append([]source(nil), r.sources...)
		r.lock.RUnlock()

		next := newCatalog(r.logger)
		for _, src := range sources {
			if err := src(ctx, next); err != nil {
				return err
			}
		}

		r.lock.Lock()
		// sources are only ever appended
		if len(r.sources) != len(sources) {
			r.lock.Unlock()
			r.logger.Debug("Color pack sources changed during reload, starting over")
			continue
		}
		r.current = next
		r.lock.Unlock()
		r.logger.Infof("Reloaded %d color packs", len(next.order))
		return nil
	}
}

// Packs lists the pack names in load order.
func (r *Repository) Packs() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]string(nil), r.current.order...)
}

// Maps lists the map names of one pack in load order.
func (r *Repository) Maps(pack string) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.current.packs[pack]
	if !ok {
		return nil, &misc.ConfigurationError{What: "color pack", Name: pack, Err: misc.ErrNotFound}
	}
	return append([]string(nil), p.names...), nil
}

// Map returns a copy of the named colour map.
func (r *Repository) Map(pack string, name string) (ColorMap, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.current.packs[pack]
	if !ok {
		return nil, &misc.ConfigurationError{What: "color pack", Name: pack, Err: misc.ErrNotFound}
	}
	cmap, ok := p.maps[name]
	if !ok {
		return nil, &misc.ConfigurationError{What: "color map", Name: pack + "/" + name, Err: misc.ErrNotFound}
	}
	return append(ColorMap(nil), cmap...), nil
}
