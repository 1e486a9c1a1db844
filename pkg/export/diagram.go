package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// --- layout computation ----------------------------------------------------

type diagramNode struct {
	Name         string
	Depth        int
	Functions    int
	FailureModes int
	Parent       int // index into nodes, -1 for roots
	X, Y         float64
}

type diagramLayout struct {
	Nodes  []diagramNode
	Width  int
	Height int
	Title  string
	NodeW  float64
	NodeH  float64
	Header float64
}

const (
	diagramNodeW   = 220.0
	diagramNodeH   = 44.0
	diagramIndent  = 48.0
	diagramRowGap  = 14.0
	diagramPadding = 32.0
	diagramHeader  = 84.0
)

// buildDiagramLayout places one box per record, top to bottom in export
// order, indented by depth. Parents always sit above their children.
func buildDiagramLayout(records []Record, title string) diagramLayout {
	layout := diagramLayout{
		Title:  title,
		NodeW:  diagramNodeW,
		NodeH:  diagramNodeH,
		Header: diagramHeader,
	}

	var ancestors []int
	maxRight := diagramPadding + diagramNodeW
	for i, rec := range records {
		if rec.Depth < len(ancestors) {
			ancestors = ancestors[:rec.Depth]
		}
		parent := -1
		if len(ancestors) > 0 {
			parent = ancestors[len(ancestors)-1]
		}
		ancestors = append(ancestors, i)

		n := diagramNode{
			Name:         rec.Component,
			Depth:        rec.Depth,
			Functions:    len(rec.Functions),
			FailureModes: len(rec.FailureModes),
			Parent:       parent,
			X:            diagramPadding + float64(rec.Depth)*diagramIndent,
			Y:            diagramHeader + float64(i)*(diagramNodeH+diagramRowGap),
		}
		if right := n.X + diagramNodeW; right > maxRight {
			maxRight = right
		}
		layout.Nodes = append(layout.Nodes, n)
	}

	layout.Width = int(maxRight + diagramPadding)
	layout.Height = int(diagramHeader + float64(len(records))*(diagramNodeH+diagramRowGap) + diagramPadding)
	return layout
}

func (n diagramNode) subtitle() string {
	return fmt.Sprintf("F %d  FM %d", n.Functions, n.FailureModes)
}

// connector returns the elbow from a parent's left rail to a child's left edge.
func (l diagramLayout) connector(n diagramNode) (x1, y1, xm, y2, x2 float64) {
	p := l.Nodes[n.Parent]
	x1 = p.X + diagramIndent/2
	y1 = p.Y + l.NodeH
	xm = x1
	y2 = n.Y + l.NodeH/2
	x2 = n.X
	return
}

var (
	colorRoot     = color.RGBA{0xd1, 0xc4, 0xe9, 0xff}
	colorChild    = color.RGBA{0xe3, 0xf2, 0xfd, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func nodeColor(n diagramNode) color.RGBA {
	if n.Depth == 0 {
		return colorRoot
	}
	return colorChild
}

// --- PNG -------------------------------------------------------------------

func encodeDiagramPNG(records []Record, opts Options) ([]byte, error) {
	layout := buildDiagramLayout(records, opts.Title)

	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-32, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, 32, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("components: %d  roots: %d", len(records), len(rootGroups(records))), 32, 56, 0, 0.5)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.5)
	for _, n := range layout.Nodes {
		if n.Parent < 0 {
			continue
		}
		x1, y1, xm, y2, x2 := layout.connector(n)
		dc.DrawLine(x1, y1, xm, y2)
		dc.Stroke()
		dc.DrawLine(xm, y2, x2, y2)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(nodeColor(n))
		dc.DrawRoundedRectangle(n.X, n.Y, layout.NodeW, layout.NodeH, 8)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(n.X, n.Y, layout.NodeW, layout.NodeH, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(truncateLabel(n.Name, 28), n.X+10, n.Y+15, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(n.subtitle(), n.X+10, n.Y+32, 0, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// --- SVG -------------------------------------------------------------------

func encodeDiagramSVG(records []Record, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	renderDiagramSVG(&buf, buildDiagramLayout(records, opts.Title), len(records), len(rootGroups(records)))
	return buf.Bytes(), nil
}

func renderDiagramSVG(w io.Writer, layout diagramLayout, components, roots int) {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-32), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 40, layout.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 60, fmt.Sprintf("components: %d  roots: %d", components, roots),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	edgeStyle := fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(colorEdge))
	for _, n := range layout.Nodes {
		if n.Parent < 0 {
			continue
		}
		x1, y1, xm, y2, x2 := layout.connector(n)
		canvas.Polyline(
			[]int{int(x1), int(xm), int(x2)},
			[]int{int(y1), int(y2), int(y2)},
			edgeStyle,
		)
	}

	for _, n := range layout.Nodes {
		x, y := int(n.X), int(n.Y)
		canvas.Roundrect(x, y, int(layout.NodeW), int(layout.NodeH), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(nodeColor(n)), css(colorStroke)))
		canvas.Text(x+10, y+18, truncateLabel(n.Name, 28),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+35, n.subtitle(),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}
	canvas.End()
}

// --- helpers ---------------------------------------------------------------

func truncateLabel(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
