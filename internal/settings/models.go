package settings

// RenderSettings controls how a certificate PDF is laid out. Coordinates are
// page points with the origin at the bottom-left corner.
type RenderSettings struct {
	Template  string `json:"template"`
	Font      Font   `json:"font"`
	QRCode    Box    `json:"qrcode"`
	Name      Anchor `json:"name"`
	Title     Anchor `json:"title"`
	Certifier Anchor `json:"certifier"`
}

type Font struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Anchor is the left end of a text baseline.
type Anchor struct {
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
}

// Box is an image placement anchored at its bottom-left corner.
type Box struct {
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

const (
	DefaultTemplate = "static/template.png"
	DefaultFontName = "Poppins Bold"
	DefaultFontSize = 32
)

// Default returns the built-in layout.
func Default() RenderSettings {
	return RenderSettings{
		Template:  DefaultTemplate,
		Font:      Font{Name: DefaultFontName, Size: DefaultFontSize},
		QRCode:    Box{Left: 600, Bottom: 100, Width: 125, Height: 125},
		Name:      Anchor{Left: 390, Bottom: 320},
		Title:     Anchor{Left: 322, Bottom: 245},
		Certifier: Anchor{Left: 377, Bottom: 100},
	}
}
