// Package pbir implements the file-backed report-definition model: a report
// tree on disk (report, pages metadata, pages, visuals, dataset tables) that
// is mirrored by in-memory entities. Every entity loads from its backing
// file via an explicit Load* factory and every mutation is an explicit
// Set*/Add*/Remove* method that rewrites the file(s) it touches
// synchronously. A failed write leaves the in-memory mutation applied and
// reports the divergence as the method's error.
package pbir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Schema URLs stamped on newly created definition files. Loaded files keep
// whatever marker they carried; the value is never interpreted.
const (
	pagesSchemaURL  = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/pagesMetadata/1.0.0/schema.json"
	pageSchemaURL   = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/page/2.0.0/schema.json"
	visualSchemaURL = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/visualContainer/2.1.0/schema.json"
)

// visualFilename is the backing file inside each visual's folder.
const visualFilename = "visual.json"

// VisualType enumerates the supported visual kinds.
type VisualType string

const (
	VisualTypeCard      VisualType = "card"
	VisualTypeBarChart  VisualType = "barChart"
	VisualTypeLineChart VisualType = "lineChart"
)

// ParseVisualType validates s against the supported visual kinds.
func ParseVisualType(s string) (VisualType, error) {
	switch VisualType(s) {
	case VisualTypeCard, VisualTypeBarChart, VisualTypeLineChart:
		return VisualType(s), nil
	default:
		return "", fmt.Errorf("unknown visual type %q: %w", s, ErrInvalid)
	}
}

// Position is a visual's placement on its page. Angle is omitted from the
// file when unset.
type Position struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Z      float64  `json:"z"`
	Height float64  `json:"height"`
	Width  float64  `json:"width"`
	Angle  *float64 `json:"angle,omitempty"`
}

// clone returns a copy that does not share the Angle pointer.
func (p Position) clone() Position {
	if p.Angle != nil {
		a := *p.Angle
		p.Angle = &a
	}
	return p
}

// VisualProperties is the "visual" object of visual.json.
type VisualProperties struct {
	VisualType              VisualType `json:"visualType"`
	DrillFilterOtherVisuals bool       `json:"drillFilterOtherVisuals"`
}

// VisualData is the exact visual.json document shape. Field order and
// casing are load-bearing for external tooling.
type VisualData struct {
	Schema   string           `json:"$schema"`
	Name     string           `json:"name"`
	Position Position         `json:"position"`
	Visual   VisualProperties `json:"visual"`
}

// Visual is one chart/card element on a page, backed by a single
// visual.json inside its own folder. The folder name equals the visual
// name; renaming is not supported.
type Visual struct {
	path string // .../visuals/<name>/visual.json
	data VisualData
}

// NewVisual creates dir (and parents) and persists data as dir/visual.json.
func NewVisual(ctx context.Context, dir string, data VisualData) (*Visual, error) {
	if data.Schema == "" {
		data.Schema = visualSchemaURL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewWriteError("write", dir, err)
	}
	v := &Visual{path: filepath.Join(dir, visualFilename), data: data}
	if err := v.writeBack(); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVisual reads an existing visual.json. A missing file is a
// NotFoundError; undecodable content is a FormatError.
func LoadVisual(ctx context.Context, path string) (*Visual, error) {
	var data VisualData
	if err := readJSONFile(path, &data); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("visual", "", path)
		}
		return nil, err
	}
	if data.Position.X < 0 || data.Position.Y < 0 || data.Position.Z < 0 ||
		data.Position.Width < 0 || data.Position.Height < 0 {
		return nil, NewFormatError(path, fmt.Errorf("negative position field"))
	}
	if data.Schema == "" {
		data.Schema = visualSchemaURL
	}
	return &Visual{path: path, data: data}, nil
}

// Name returns the visual's logical name (equals its folder name).
func (v *Visual) Name() string { return v.data.Name }

// Path returns the backing visual.json path.
func (v *Visual) Path() string { return v.path }

func (v *Visual) X() float64      { return v.data.Position.X }
func (v *Visual) Y() float64      { return v.data.Position.Y }
func (v *Visual) Z() float64      { return v.data.Position.Z }
func (v *Visual) Width() float64  { return v.data.Position.Width }
func (v *Visual) Height() float64 { return v.data.Position.Height }

// Position returns a copy of the visual's placement.
func (v *Visual) Position() Position { return v.data.Position.clone() }

// VisualType returns the visual kind.
func (v *Visual) VisualType() VisualType { return v.data.Visual.VisualType }

// DrillFilterOtherVisuals reports whether the visual drill-filters its
// siblings.
func (v *Visual) DrillFilterOtherVisuals() bool { return v.data.Visual.DrillFilterOtherVisuals }

// SetX assigns the x coordinate and rewrites the backing file.
func (v *Visual) SetX(ctx context.Context, x float64) error {
	v.data.Position.X = x
	return v.writeBack()
}

// SetY assigns the y coordinate and rewrites the backing file.
func (v *Visual) SetY(ctx context.Context, y float64) error {
	v.data.Position.Y = y
	return v.writeBack()
}

// SetZ assigns the z-order value and rewrites the backing file.
func (v *Visual) SetZ(ctx context.Context, z float64) error {
	v.data.Position.Z = z
	return v.writeBack()
}

// SetWidth assigns the width and rewrites the backing file.
func (v *Visual) SetWidth(ctx context.Context, w float64) error {
	v.data.Position.Width = w
	return v.writeBack()
}

// SetHeight assigns the height and rewrites the backing file.
func (v *Visual) SetHeight(ctx context.Context, h float64) error {
	v.data.Position.Height = h
	return v.writeBack()
}

// SetPosition assigns both coordinates with a single rewrite.
func (v *Visual) SetPosition(ctx context.Context, x, y float64) error {
	v.data.Position.X = x
	v.data.Position.Y = y
	return v.writeBack()
}

// SetSize assigns both dimensions with a single rewrite.
func (v *Visual) SetSize(ctx context.Context, width, height float64) error {
	v.data.Position.Width = width
	v.data.Position.Height = height
	return v.writeBack()
}

// SetVisualType assigns the visual kind and rewrites the backing file.
func (v *Visual) SetVisualType(ctx context.Context, t VisualType) error {
	v.data.Visual.VisualType = t
	return v.writeBack()
}

// Remove deletes visual.json and, when the visual's folder is left empty,
// the folder too. Removing an already-missing visual is a NotFoundError.
func (v *Visual) Remove(ctx context.Context) error {
	return removeEntityFile("visual", v.data.Name, v.path)
}

func (v *Visual) writeBack() error {
	return writeJSONFile(v.path, &v.data)
}
