package block

// Content is the closed union of per-type block payloads. Each concrete
// content type carries the data one block type needs and nothing else.
// The unexported marker keeps the union sealed to this package; consumers
// narrow values with the recognizers below or through the registry.
type Content interface {
	contentType() Type
}

// TextContent holds markdown text for text blocks.
type TextContent struct {
	Markdown string `json:"markdown" bson:"markdown"`
}

// CodeContent holds a source listing with an optional language hint.
type CodeContent struct {
	Language string `json:"language,omitempty" bson:"language,omitempty"`
	Source   string `json:"source" bson:"source"`
}

// LinkContent holds an external URL with an optional display title.
type LinkContent struct {
	URL   string `json:"url" bson:"url"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
}

// TableContent holds a header row and body rows.
type TableContent struct {
	Header []string   `json:"header" bson:"header"`
	Rows   [][]string `json:"rows" bson:"rows"`
}

// AgendaItem is one checklist entry.
type AgendaItem struct {
	Text string `json:"text" bson:"text"`
	Done bool   `json:"done" bson:"done"`
}

// AgendaContent holds an ordered checklist.
type AgendaContent struct {
	Items []AgendaItem `json:"items" bson:"items"`
}

// ImageContent holds an image reference with alt text.
type ImageContent struct {
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// DiagramContent holds Graphviz DOT source. The render package turns it
// into SVG; invalid DOT is a render-time error, never a model error.
type DiagramContent struct {
	DOT string `json:"dot" bson:"dot"`
}

// AudioContent holds an audio reference.
type AudioContent struct {
	URL   string `json:"url" bson:"url"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
}

// VideoContent holds a video reference.
type VideoContent struct {
	URL   string `json:"url" bson:"url"`
	Title string `json:"title,omitempty" bson:"title,omitempty"`
}

// Point is one coordinate of a whiteboard stroke.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Stroke is one freehand line on a whiteboard.
type Stroke struct {
	Color  string  `json:"color,omitempty" bson:"color,omitempty"`
	Points []Point `json:"points" bson:"points"`
}

// WhiteboardContent holds freehand strokes.
type WhiteboardContent struct {
	Strokes []Stroke `json:"strokes" bson:"strokes"`
}

func (TextContent) contentType() Type       { return TypeText }
func (CodeContent) contentType() Type       { return TypeCode }
func (LinkContent) contentType() Type       { return TypeLink }
func (TableContent) contentType() Type      { return TypeTable }
func (AgendaContent) contentType() Type     { return TypeAgenda }
func (ImageContent) contentType() Type      { return TypeImage }
func (DiagramContent) contentType() Type    { return TypeDiagram }
func (AudioContent) contentType() Type      { return TypeAudio }
func (VideoContent) contentType() Type      { return TypeVideo }
func (WhiteboardContent) contentType() Type { return TypeWhiteboard }

// Recognizers narrow a polymorphic content value against a claimed type tag.
// Each returns true only when the content's concrete shape matches AND the
// supplied tag names the same type. Asked about a foreign type they return
// false rather than panicking, so the dispatcher can probe candidates
// without guarding each call.

// IsTextContent reports whether c is text content claimed as the text type.
func IsTextContent(c Content, t Type) bool {
	_, ok := c.(TextContent)
	return ok && t == TypeText
}

// IsCodeContent reports whether c is code content claimed as the code type.
func IsCodeContent(c Content, t Type) bool {
	_, ok := c.(CodeContent)
	return ok && t == TypeCode
}

// IsLinkContent reports whether c is link content claimed as the link type.
func IsLinkContent(c Content, t Type) bool {
	_, ok := c.(LinkContent)
	return ok && t == TypeLink
}

// IsTableContent reports whether c is table content claimed as the table type.
func IsTableContent(c Content, t Type) bool {
	_, ok := c.(TableContent)
	return ok && t == TypeTable
}

// IsAgendaContent reports whether c is agenda content claimed as the agenda type.
func IsAgendaContent(c Content, t Type) bool {
	_, ok := c.(AgendaContent)
	return ok && t == TypeAgenda
}

// IsImageContent reports whether c is image content claimed as the image type.
func IsImageContent(c Content, t Type) bool {
	_, ok := c.(ImageContent)
	return ok && t == TypeImage
}

// IsDiagramContent reports whether c is diagram content claimed as the diagram type.
func IsDiagramContent(c Content, t Type) bool {
	_, ok := c.(DiagramContent)
	return ok && t == TypeDiagram
}

// IsAudioContent reports whether c is audio content claimed as the audio type.
func IsAudioContent(c Content, t Type) bool {
	_, ok := c.(AudioContent)
	return ok && t == TypeAudio
}

// IsVideoContent reports whether c is video content claimed as the video type.
func IsVideoContent(c Content, t Type) bool {
	_, ok := c.(VideoContent)
	return ok && t == TypeVideo
}

// IsWhiteboardContent reports whether c is whiteboard content claimed as the
// whiteboard type.
func IsWhiteboardContent(c Content, t Type) bool {
	_, ok := c.(WhiteboardContent)
	return ok && t == TypeWhiteboard
}
