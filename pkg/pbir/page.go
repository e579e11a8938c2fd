package pbir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/jlrickert/cli-toolkit/mylog"
)

// pageFilename is the backing file inside each page's folder.
const pageFilename = "page.json"

// visualsDirname holds a page's visuals, one folder per visual.
const visualsDirname = "visuals"

// Default canvas size stamped on new pages.
const (
	defaultPageWidth  float64 = 1280
	defaultPageHeight float64 = 720
)

// PageDisplayOption controls how a client scales the page canvas.
type PageDisplayOption string

// FitToPage is the display option stamped on pages created here.
const FitToPage PageDisplayOption = "FitToPage"

// PageData is the exact page.json document shape. Field order and casing
// are load-bearing for external tooling.
type PageData struct {
	Schema        string            `json:"$schema"`
	Name          string            `json:"name"`
	DisplayName   string            `json:"displayName"`
	DisplayOption PageDisplayOption `json:"displayOption"`
	Height        float64           `json:"height"`
	Width         float64           `json:"width"`
}

// Page is one report canvas: a page.json plus the visuals under its
// visuals/ directory. Methods that target a visual by name return a
// NotFoundError when the page has no such visual.
type Page struct {
	path    string // .../pages/<name>/page.json
	data    PageData
	visuals map[string]*Visual
}

// NewPage creates dir (and parents) and persists data as dir/page.json.
// A blank display option and zero dimensions fall back to the defaults
// (FitToPage, 1280x720). Visual folders already present under dir are
// picked up.
func NewPage(ctx context.Context, dir string, data PageData) (*Page, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("page name is empty: %w", ErrInvalid)
	}
	if data.Schema == "" {
		data.Schema = pageSchemaURL
	}
	if data.DisplayOption == "" {
		data.DisplayOption = FitToPage
	}
	if data.Height == 0 {
		data.Height = defaultPageHeight
	}
	if data.Width == 0 {
		data.Width = defaultPageWidth
	}
	if data.Height < 0 || data.Width < 0 {
		return nil, fmt.Errorf("page dimensions %vx%v must be positive: %w", data.Width, data.Height, ErrInvalid)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewWriteError("write", dir, err)
	}
	p := &Page{
		path:    filepath.Join(dir, pageFilename),
		data:    data,
		visuals: map[string]*Visual{},
	}
	if err := p.writeBack(); err != nil {
		return nil, err
	}
	if err := p.loadVisuals(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPage reads an existing page.json and scans the visuals directory
// beside it. A missing file is a NotFoundError. Visual folders without a
// visual.json are skipped silently; undecodable visuals are skipped with
// a warning so one bad file cannot hide the rest of the page.
func LoadPage(ctx context.Context, path string) (*Page, error) {
	var data PageData
	if err := readJSONFile(path, &data); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("page", "", path)
		}
		return nil, err
	}
	if data.Height < 0 || data.Width < 0 {
		return nil, NewFormatError(path, fmt.Errorf("negative page dimension"))
	}
	if data.Schema == "" {
		data.Schema = pageSchemaURL
	}
	if data.DisplayOption == "" {
		data.DisplayOption = FitToPage
	}
	if data.Height == 0 {
		data.Height = defaultPageHeight
	}
	if data.Width == 0 {
		data.Width = defaultPageWidth
	}
	p := &Page{path: path, data: data, visuals: map[string]*Visual{}}
	if err := p.loadVisuals(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) loadVisuals(ctx context.Context) error {
	lg := mylog.LoggerFromContext(ctx)
	dir := filepath.Join(p.dir(), visualsDirname)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to scan visuals under %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		vpath := filepath.Join(dir, entry.Name(), visualFilename)
		v, err := LoadVisual(ctx, vpath)
		if err != nil {
			if IsNotExist(err) {
				continue
			}
			lg.Warn("skipping unreadable visual", "path", vpath, "err", err)
			continue
		}
		p.visuals[v.Name()] = v
	}
	return nil
}

// Name returns the page's logical name (equals its folder name).
func (p *Page) Name() string { return p.data.Name }

// Path returns the absolute path of the backing page.json.
func (p *Page) Path() string { return p.path }

// DisplayName returns the human-facing page title.
func (p *Page) DisplayName() string { return p.data.DisplayName }

// DisplayOption returns the canvas scaling mode.
func (p *Page) DisplayOption() PageDisplayOption { return p.data.DisplayOption }

// Height returns the canvas height in pixels.
func (p *Page) Height() float64 { return p.data.Height }

// Width returns the canvas width in pixels.
func (p *Page) Width() float64 { return p.data.Width }

// dir is the page folder containing page.json and visuals/.
func (p *Page) dir() string { return filepath.Dir(p.path) }

// Visual looks up a visual by name.
func (p *Page) Visual(name string) (*Visual, bool) {
	v, ok := p.visuals[name]
	return v, ok
}

// Visuals returns the page's visuals keyed by name. The map is a copy;
// the entities are shared.
func (p *Page) Visuals() map[string]*Visual {
	out := make(map[string]*Visual, len(p.visuals))
	for name, v := range p.visuals {
		out[name] = v
	}
	return out
}

// VisualNames returns the page's visual names sorted.
func (p *Page) VisualNames() []string {
	names := make([]string, 0, len(p.visuals))
	for name := range p.visuals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDisplayName persists a new human-facing title.
func (p *Page) SetDisplayName(ctx context.Context, name string) error {
	p.data.DisplayName = name
	return p.writeBack()
}

// SetDisplayOption persists a new canvas scaling mode.
func (p *Page) SetDisplayOption(ctx context.Context, opt PageDisplayOption) error {
	p.data.DisplayOption = opt
	return p.writeBack()
}

// SetHeight persists a new canvas height. Non-positive values are
// rejected with ErrInvalid.
func (p *Page) SetHeight(ctx context.Context, h float64) error {
	if h <= 0 {
		return fmt.Errorf("page height %v must be positive: %w", h, ErrInvalid)
	}
	p.data.Height = h
	return p.writeBack()
}

// SetWidth persists a new canvas width. Non-positive values are rejected
// with ErrInvalid.
func (p *Page) SetWidth(ctx context.Context, w float64) error {
	if w <= 0 {
		return fmt.Errorf("page width %v must be positive: %w", w, ErrInvalid)
	}
	p.data.Width = w
	return p.writeBack()
}

// Resize persists new canvas dimensions in a single write.
func (p *Page) Resize(ctx context.Context, width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("page size %vx%v must be positive: %w", width, height, ErrInvalid)
	}
	p.data.Width = width
	p.data.Height = height
	return p.writeBack()
}

// AddVisual creates a visual at (x, y) on layer z, persists it under
// visuals/<id>/visual.json and returns it. The id is the first eight
// characters of a fresh UUID; collisions are considered negligible.
// Coordinates and z must be non-negative, dimensions positive.
func (p *Page) AddVisual(ctx context.Context, t VisualType, x, y, width, height, z float64) (*Visual, error) {
	if _, err := ParseVisualType(string(t)); err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || z < 0 {
		return nil, fmt.Errorf("visual position (%v, %v, z %v) must be non-negative: %w", x, y, z, ErrInvalid)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("visual size %vx%v must be positive: %w", width, height, ErrInvalid)
	}
	name := uuid.NewString()[:8]
	v, err := NewVisual(ctx, filepath.Join(p.dir(), visualsDirname, name), VisualData{
		Name:     name,
		Position: Position{X: x, Y: y, Z: z, Width: width, Height: height},
		Visual: VisualProperties{
			VisualType:              t,
			DrillFilterOtherVisuals: true,
		},
	})
	if err != nil {
		return nil, err
	}
	p.visuals[name] = v
	return v, nil
}

// RemoveVisual deletes a visual's folder and forgets it. Removing a
// visual the page does not have is a no-op.
func (p *Page) RemoveVisual(ctx context.Context, name string) error {
	v, ok := p.visuals[name]
	if !ok {
		return nil
	}
	if err := v.Remove(ctx); err != nil {
		return err
	}
	delete(p.visuals, name)
	return nil
}

// visual returns the named visual or a NotFoundError.
func (p *Page) visual(name string) (*Visual, error) {
	v, ok := p.visuals[name]
	if !ok {
		return nil, NewNotFound("visual", name, p.dir())
	}
	return v, nil
}

// MoveVisualToPosition places the named visual's top-left corner at
// (x, y) in a single write.
func (p *Page) MoveVisualToPosition(ctx context.Context, name string, x, y float64) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("visual position (%v, %v) must be non-negative: %w", x, y, ErrInvalid)
	}
	v, err := p.visual(name)
	if err != nil {
		return err
	}
	return v.SetPosition(ctx, x, y)
}

// SetVisualToPercentagePageWidth sizes the named visual's width to the
// given fraction of the page width (0.5 on a 1280 wide page gives 640).
func (p *Page) SetVisualToPercentagePageWidth(ctx context.Context, name string, fraction float64) error {
	if fraction <= 0 {
		return fmt.Errorf("fraction %v must be positive: %w", fraction, ErrInvalid)
	}
	v, err := p.visual(name)
	if err != nil {
		return err
	}
	return v.SetWidth(ctx, p.data.Width*fraction)
}

// SetVisualToPercentagePageHeight sizes the named visual's height to the
// given fraction of the page height.
func (p *Page) SetVisualToPercentagePageHeight(ctx context.Context, name string, fraction float64) error {
	if fraction <= 0 {
		return fmt.Errorf("fraction %v must be positive: %w", fraction, ErrInvalid)
	}
	v, err := p.visual(name)
	if err != nil {
		return err
	}
	return v.SetHeight(ctx, p.data.Height*fraction)
}

// SetVisualToPercentagePageSize sizes both dimensions of the named
// visual, each to its own fraction of the page canvas, in a single
// write.
func (p *Page) SetVisualToPercentagePageSize(ctx context.Context, name string, widthFraction, heightFraction float64) error {
	if widthFraction <= 0 || heightFraction <= 0 {
		return fmt.Errorf("fractions %v and %v must be positive: %w", widthFraction, heightFraction, ErrInvalid)
	}
	v, err := p.visual(name)
	if err != nil {
		return err
	}
	return v.SetSize(ctx, p.data.Width*widthFraction, p.data.Height*heightFraction)
}

// CheckVisualOverlaps returns every other visual whose rectangle
// strictly overlaps the named visual's rectangle, keyed by name.
// Rectangles that only touch along an edge do not overlap.
func (p *Page) CheckVisualOverlaps(name string) (map[string]Position, error) {
	target, err := p.visual(name)
	if err != nil {
		return nil, err
	}
	overlaps := map[string]Position{}
	for other, v := range p.visuals {
		if other == name {
			continue
		}
		if target.X() < v.X()+v.Width() && v.X() < target.X()+target.Width() &&
			target.Y() < v.Y()+v.Height() && v.Y() < target.Y()+target.Height() {
			overlaps[other] = v.Position()
		}
	}
	return overlaps, nil
}

// BringVisualToFront raises the named visual above every other visual on
// the page by giving it the page's maximum z plus one.
func (p *Page) BringVisualToFront(ctx context.Context, name string) error {
	target, err := p.visual(name)
	if err != nil {
		return err
	}
	var maxZ float64
	for _, v := range p.visuals {
		if v.Z() > maxZ {
			maxZ = v.Z()
		}
	}
	return target.SetZ(ctx, maxZ+1)
}

// SendVisualToBack moves the named visual to the bottom layer and shifts
// every other visual up one. Shifted visuals persist in name order; the
// target is verified before anything is touched.
func (p *Page) SendVisualToBack(ctx context.Context, name string) error {
	target, err := p.visual(name)
	if err != nil {
		return err
	}
	for _, other := range p.VisualNames() {
		if other == name {
			continue
		}
		v := p.visuals[other]
		if err := v.SetZ(ctx, v.Z()+1); err != nil {
			return err
		}
	}
	return target.SetZ(ctx, 0)
}

// Remove deletes the page folder and everything under it.
func (p *Page) Remove(ctx context.Context) error {
	if err := os.RemoveAll(p.dir()); err != nil {
		return NewWriteError("remove", p.dir(), err)
	}
	p.visuals = map[string]*Visual{}
	return nil
}

func (p *Page) writeBack() error {
	return writeJSONFile(p.path, p.data)
}
