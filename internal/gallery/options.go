package gallery

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gallery/internal/domain"
	"gallery/internal/scene"
)

// NumImages is the number of slots on the panel.
const NumImages = 9

// Size2 is a width/height pair in meters.
type Size2 struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Size3 is a width/height/depth triple in meters.
type Size3 struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

// GridSize is the number of rows and columns of cells.
type GridSize struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// ButtonOptions configures the trigger button and its clips.
type ButtonOptions struct {
	Transform  scene.TransformSpec `yaml:"transform"`
	Clips      map[string]string   `yaml:"clips"`
	Dimensions Size3               `yaml:"dimensions"`
}

// Options is the layout of the gallery.
type Options struct {
	Dimensions     Size2         `yaml:"dimensions"`
	Size           GridSize      `yaml:"size"`
	Margin         float64       `yaml:"margin"`
	Button         ButtonOptions `yaml:"button"`
	TextureBaseURL string        `yaml:"texture_base_url"`
}

// DefaultOptions returns the stock 3x3 panel above a button.
func DefaultOptions() Options {
	return Options{
		Dimensions: Size2{Width: 0.4, Height: 0.4},
		Size:       GridSize{Row: 3, Col: 3},
		Margin:     0.01,
		Button: ButtonOptions{
			Transform: scene.TransformSpec{
				Position: &scene.Vector3{Y: -0.1},
				Rotation: &scene.Vector3{Y: 180},
			},
			Clips: map[string]string{
				string(domain.ClipIdle):       "artifact:2109625984163512461",
				string(domain.ClipSleep):      "artifact:2109625984289341582",
				string(domain.ClipActivate):   "artifact:2109625983895077003",
				string(domain.ClipDeactivate): "artifact:2109625984029294732",
			},
			Dimensions: Size3{Width: 0.4, Height: 0.7, Depth: 0.4},
		},
		TextureBaseURL: "public",
	}
}

// LoadOptions overlays the YAML file at path on the defaults. An empty path returns the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("gallery: read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("gallery: parse layout: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks that the layout can hold every slot and every clip is mapped.
func (o Options) Validate() error {
	var errs []error
	if o.Dimensions.Width <= 0 || o.Dimensions.Height <= 0 {
		errs = append(errs, errors.New("cell dimensions must be positive"))
	}
	if o.Size.Row <= 0 || o.Size.Col <= 0 || o.Size.Row*o.Size.Col < NumImages {
		errs = append(errs, fmt.Errorf("grid %dx%d cannot hold %d images", o.Size.Row, o.Size.Col, NumImages))
	}
	if o.Margin < 0 {
		errs = append(errs, errors.New("margin must not be negative"))
	}
	d := o.Button.Dimensions
	if d.Width <= 0 || d.Height <= 0 || d.Depth <= 0 {
		errs = append(errs, errors.New("button dimensions must be positive"))
	}
	for _, c := range domain.Clips {
		if o.Button.Clips[string(c)] == "" {
			errs = append(errs, fmt.Errorf("clip %q has no resource", c))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("gallery: invalid layout: %w", errors.Join(errs...))
	}
	return nil
}

// AnchorHeight is the height of the grid anchor above the scene origin: half
// the grid plus half the button plus a fixed 0.2 gap.
func (o Options) AnchorHeight() float64 {
	rows := float64(o.Size.Row)
	grid := o.Margin*(rows-1) + o.Dimensions.Height*rows
	return grid/2 + o.Button.Dimensions.Height/2 + 0.1 + 0.1
}
