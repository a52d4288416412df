// Package pdf draws single-page documents with absolute placement.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/sfnt"
)

// Landscape A4 in points.
const (
	PageWidth  = 841.89
	PageHeight = 595.28
)

type ElementKind string

const (
	KindImage ElementKind = "image"
	KindText  ElementKind = "text"
)

// Element records one drawing operation in page coordinates with the origin
// at the bottom-left corner.
type Element struct {
	Kind   ElementKind
	Name   string
	Left   float64
	Bottom float64
	Width  float64
	Height float64
	Text   string
	Font   string
	Size   float64
}

// ErrMissingGlyph is returned when the current font cannot display a
// character of the text being drawn.
var ErrMissingGlyph = errors.New("font has no glyph for character")

// FontFace selects a font. Data holds a TrueType file; when empty Family must
// be one of the PDF core fonts (Helvetica, Times, Courier).
type FontFace struct {
	Family string
	Style  string
	Data   []byte
}

// Options configures document metadata
type Options struct {
	Title   string
	Creator string
}

// Canvas wraps a gofpdf document holding one landscape A4 page.
type Canvas struct {
	pdf        *gofpdf.Fpdf
	elements   []Element
	registered map[string]bool
	outlines   map[string]*sfnt.Font
	font       FontFace
	fontSize   float64
	glyphs     *sfnt.Font
	cp1252     func(string) string
	translate  func(string) string
}

// NewCanvas creates an empty landscape A4 page without margins.
func NewCanvas(opts Options) *Canvas {
	doc := gofpdf.New("L", "pt", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		doc.SetTitle(opts.Title, true)
	}
	if opts.Creator != "" {
		doc.SetCreator(opts.Creator, true)
	}
	doc.AddPage()

	return &Canvas{
		pdf:        doc,
		registered: make(map[string]bool),
		outlines:   make(map[string]*sfnt.Font),
	}
}

// DrawImage places a PNG image with its bottom-left corner at (left, bottom).
func (c *Canvas) DrawImage(name string, png io.Reader, left, bottom, width, height float64) error {
	if c.registered[name] {
		return fmt.Errorf("image %q already drawn", name)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opts, png)
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to register image %q: %w", name, err)
	}
	c.registered[name] = true

	top := PageHeight - bottom - height
	c.pdf.ImageOptions(name, left, top, width, height, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to draw image %q: %w", name, err)
	}

	c.elements = append(c.elements, Element{
		Kind: KindImage, Name: name,
		Left: left, Bottom: bottom, Width: width, Height: height,
	})
	return nil
}

// SetFont selects the face used by subsequent DrawText calls.
func (c *Canvas) SetFont(face FontFace, size float64) error {
	if len(face.Data) > 0 {
		key := "font:" + face.Family + ":" + face.Style
		if !c.registered[key] {
			outline, err := sfnt.Parse(face.Data)
			if err != nil {
				return fmt.Errorf("failed to parse font %q: %w", face.Family, err)
			}
			c.pdf.AddUTF8FontFromBytes(face.Family, face.Style, face.Data)
			if err := c.pdf.Error(); err != nil {
				return fmt.Errorf("failed to load font %q: %w", face.Family, err)
			}
			c.outlines[key] = outline
			c.registered[key] = true
		}
		c.glyphs = c.outlines[key]
		c.translate = nil
	} else {
		if c.cp1252 == nil {
			c.cp1252 = c.pdf.UnicodeTranslatorFromDescriptor("")
		}
		c.glyphs = nil
		c.translate = c.cp1252
	}

	c.pdf.SetFont(face.Family, face.Style, size)
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to set font %q: %w", face.Family, err)
	}
	c.font = face
	c.fontSize = size
	return nil
}

// Unsupported returns the first character of text the current font cannot
// display. Core fonts display cp1252 only.
func (c *Canvas) Unsupported(text string) (rune, bool) {
	switch {
	case c.glyphs != nil:
		var buf sfnt.Buffer
		for _, r := range text {
			idx, err := c.glyphs.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				return r, true
			}
		}
	case c.translate != nil:
		for _, r := range text {
			if r >= 0x80 && c.translate(string(r)) == "." {
				return r, true
			}
		}
	}
	return 0, false
}

// DrawText writes text with the left end of its baseline at (left, bottom).
func (c *Canvas) DrawText(name string, left, bottom float64, text string) error {
	if c.font.Family == "" {
		return fmt.Errorf("no font selected for %q", name)
	}

	if r, missing := c.Unsupported(text); missing {
		return fmt.Errorf("%w %q in %q", ErrMissingGlyph, r, name)
	}

	out := text
	if c.translate != nil {
		out = c.translate(text)
	}
	c.pdf.Text(left, PageHeight-bottom, out)
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to draw text %q: %w", name, err)
	}

	c.elements = append(c.elements, Element{
		Kind: KindText, Name: name,
		Left: left, Bottom: bottom,
		Width: c.pdf.GetStringWidth(out), Height: c.fontSize,
		Text: text, Font: c.font.Family, Size: c.fontSize,
	})
	return nil
}

// Elements returns the drawing operations in the order they were made.
func (c *Canvas) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Output finalizes the document and returns it positioned at the start.
func (c *Canvas) Output() (*bytes.Reader, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to output PDF: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}
