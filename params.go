package easel

// DefaultFillColor is used when a node declares no fills.
const DefaultFillColor = "#ffffff"

// FillType identifies a fill variant.
type FillType string

const (
	FillColor  FillType = "color"
	FillImage  FillType = "image"
	FillLinear FillType = "linear"
)

// GradientStop is one stop of a linear gradient.
type GradientStop struct {
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
	Position float64 `json:"position"`
}

// Fill is one paint layer. Which fields apply depends on Type.
type Fill struct {
	Type      FillType       `json:"type"`
	Color     string         `json:"color,omitempty"`
	Opacity   float64        `json:"opacity"`
	Src       string         `json:"src,omitempty"`
	Direction float64        `json:"direction,omitempty"`
	Stops     []GradientStop `json:"stops,omitempty"`
}

// Stroke is one outline layer.
type Stroke struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Width   float64 `json:"width"`
}

// Params are the paint parameters shared by all node kinds.
type Params struct {
	Fills   []Fill   `json:"fills,omitempty"`
	Strokes []Stroke `json:"strokes,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Visible *bool    `json:"visible,omitempty"`
}

// FillList returns the fills, or a single opaque DefaultFillColor fill.
func (p *Params) FillList() []Fill {
	if len(p.Fills) == 0 {
		return []Fill{{Type: FillColor, Color: DefaultFillColor, Opacity: 1}}
	}
	return p.Fills
}

// EffectiveOpacity returns Opacity or 1.
func (p *Params) EffectiveOpacity() float64 {
	if p.Opacity == nil {
		return 1
	}
	return *p.Opacity
}

// IsVisible returns Visible or true.
func (p *Params) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// SetOpacity sets Opacity.
func (p *Params) SetOpacity(v float64) { p.Opacity = &v }

// SetVisible sets Visible.
func (p *Params) SetVisible(v bool) { p.Visible = &v }

func (p Params) clone() Params {
	out := Params{
		Fills:   append([]Fill(nil), p.Fills...),
		Strokes: append([]Stroke(nil), p.Strokes...),
	}
	for i := range out.Fills {
		out.Fills[i].Stops = append([]GradientStop(nil), out.Fills[i].Stops...)
	}
	if p.Opacity != nil {
		v := *p.Opacity
		out.Opacity = &v
	}
	if p.Visible != nil {
		v := *p.Visible
		out.Visible = &v
	}
	return out
}
