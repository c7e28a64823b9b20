package domain

// ElementType is the closed set of canvas primitive kinds.
type ElementType string

const (
	ElementRectangle ElementType = "rectangle"
	ElementEllipse   ElementType = "ellipse"
	ElementDiamond   ElementType = "diamond"
	ElementText      ElementType = "text"
	ElementArrow     ElementType = "arrow"
	ElementLine      ElementType = "line"
	ElementImage     ElementType = "image"
)

// Fill and stroke style constants.
const (
	FillSolid      = "solid"
	FillHachure    = "hachure"
	FillCrossHatch = "cross-hatch"

	StrokeSolid  = "solid"
	StrokeDashed = "dashed"
	StrokeDotted = "dotted"
)

// Roundness describes corner rounding for a canvas element.
type Roundness struct {
	Type  int     `json:"type"`
	Value float64 `json:"value,omitempty"`
}

// BoundElement is a back-reference from a container to a bound element,
// e.g. a label text bound to its shape.
type BoundElement struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Point is a 2D coordinate. Arrow and line elements carry a polyline of
// points relative to the element origin, so the first point is always (0,0).
type Point [2]float64

// CanvasElement is one renderable primitive in the hand-drawn canvas format.
// The field set mirrors the canvas wire format: every element carries the
// full visual-style attribute block, plus type-specific extension fields
// that are omitted when empty.
type CanvasElement struct {
	ID              string         `json:"id"`
	Type            ElementType    `json:"type"`
	X               float64        `json:"x"`
	Y               float64        `json:"y"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	Angle           float64        `json:"angle"`
	StrokeColor     string         `json:"strokeColor"`
	BackgroundColor string         `json:"backgroundColor"`
	FillStyle       string         `json:"fillStyle"`
	StrokeWidth     int            `json:"strokeWidth"`
	StrokeStyle     string         `json:"strokeStyle"`
	Roughness       int            `json:"roughness"`
	Opacity         int            `json:"opacity"`
	Roundness       *Roundness     `json:"roundness"`
	Seed            int64          `json:"seed"`
	Version         int            `json:"version"`
	VersionNonce    int64          `json:"versionNonce"`
	IsDeleted       bool           `json:"isDeleted"`
	GroupIDs        []string       `json:"groupIds"`
	BoundElements   []BoundElement `json:"boundElements"`
	Updated         int64          `json:"updated"`
	Link            string         `json:"link,omitempty"`
	Locked          bool           `json:"locked"`

	// Text extension fields.
	Text          string  `json:"text,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontFamily    int     `json:"fontFamily,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`
	VerticalAlign string  `json:"verticalAlign,omitempty"`
	ContainerID   string  `json:"containerId,omitempty"`
	OriginalText  string  `json:"originalText,omitempty"`
	AutoResize    bool    `json:"autoResize,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`

	// Arrow/line extension fields.
	Points         []Point `json:"points,omitempty"`
	StartArrowhead string  `json:"startArrowhead,omitempty"`
	EndArrowhead   string  `json:"endArrowhead,omitempty"`

	// Image extension fields.
	FileID string      `json:"fileId,omitempty"`
	Status string      `json:"status,omitempty"`
	Scale  *[2]float64 `json:"scale,omitempty"`
}

// FileData is a self-contained binary asset referenced by an image element.
// DataURL carries the payload inline as a base64 data URI.
type FileData struct {
	MimeType string `json:"mimeType"`
	ID       string `json:"id"`
	DataURL  string `json:"dataURL"`
}

// AssetMap maps asset ids to their payloads.
type AssetMap map[string]FileData

// Merge copies all entries of other into m.
func (m AssetMap) Merge(other AssetMap) {
	for id, f := range other {
		m[id] = f
	}
}
