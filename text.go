package grove

import (
	"time"
	"unicode"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// DefaultTextCapacity is the stroke capacity used when TextOptions.Capacity
// is zero.
const DefaultTextCapacity = 100

// stroke is a segment between two points of the 17x17 glyph grid, given as
// x1, y1, x2, y2 with y growing downwards. Grid step i maps to i/16.
type stroke [4]uint8

// strokeFont holds the upper-case glyphs; lower-case letters share them.
var strokeFont = map[rune][]stroke{
	'A': {{3, 14, 8, 2}, {8, 2, 13, 14}, {5, 9, 11, 9}},
	'B': {{3, 2, 3, 14}, {3, 2, 11, 2}, {11, 2, 13, 4}, {13, 4, 13, 6}, {13, 6, 11, 8}, {3, 8, 11, 8},
		{11, 8, 13, 10}, {13, 10, 13, 12}, {13, 12, 11, 14}, {11, 14, 3, 14}},
	'C': {{13, 2, 3, 2}, {3, 2, 3, 14}, {3, 14, 13, 14}},
	'D': {{3, 2, 3, 14}, {3, 2, 10, 2}, {10, 2, 13, 5}, {13, 5, 13, 11}, {13, 11, 10, 14}, {10, 14, 3, 14}},
	'E': {{13, 2, 3, 2}, {3, 2, 3, 14}, {3, 14, 13, 14}, {3, 8, 10, 8}},
	'F': {{13, 2, 3, 2}, {3, 2, 3, 14}, {3, 8, 10, 8}},
	'G': {{13, 2, 3, 2}, {3, 2, 3, 14}, {3, 14, 13, 14}, {13, 14, 13, 8}, {13, 8, 8, 8}},
	'H': {{3, 2, 3, 14}, {13, 2, 13, 14}, {3, 8, 13, 8}},
	'I': {{5, 2, 11, 2}, {8, 2, 8, 14}, {5, 14, 11, 14}},
	'J': {{13, 2, 13, 14}, {13, 14, 3, 14}, {3, 14, 3, 10}},
	'K': {{3, 2, 3, 14}, {13, 2, 3, 8}, {3, 8, 13, 14}},
	'L': {{3, 2, 3, 14}, {3, 14, 13, 14}},
	'M': {{3, 14, 3, 2}, {3, 2, 8, 8}, {8, 8, 13, 2}, {13, 2, 13, 14}},
	'N': {{3, 14, 3, 2}, {3, 2, 13, 14}, {13, 14, 13, 2}},
	'O': {{3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}, {3, 14, 3, 2}},
	'P': {{3, 14, 3, 2}, {3, 2, 13, 2}, {13, 2, 13, 8}, {13, 8, 3, 8}},
	'Q': {{3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}, {3, 14, 3, 2}, {9, 10, 14, 15}},
	'R': {{3, 14, 3, 2}, {3, 2, 13, 2}, {13, 2, 13, 8}, {13, 8, 3, 8}, {7, 8, 13, 14}},
	'S': {{13, 2, 3, 2}, {3, 2, 3, 8}, {3, 8, 13, 8}, {13, 8, 13, 14}, {13, 14, 3, 14}},
	'T': {{3, 2, 13, 2}, {8, 2, 8, 14}},
	'U': {{3, 2, 3, 14}, {3, 14, 13, 14}, {13, 14, 13, 2}},
	'V': {{3, 2, 8, 14}, {8, 14, 13, 2}},
	'W': {{3, 2, 5, 14}, {5, 14, 8, 8}, {8, 8, 11, 14}, {11, 14, 13, 2}},
	'X': {{3, 2, 13, 14}, {13, 2, 3, 14}},
	'Y': {{3, 2, 8, 8}, {13, 2, 8, 8}, {8, 8, 8, 14}},
	'Z': {{3, 2, 13, 2}, {13, 2, 3, 14}, {3, 14, 13, 14}},

	'0': {{3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}, {3, 14, 3, 2}, {3, 14, 13, 2}},
	'1': {{5, 4, 8, 2}, {8, 2, 8, 14}, {5, 14, 11, 14}},
	'2': {{3, 2, 13, 2}, {13, 2, 13, 8}, {13, 8, 3, 8}, {3, 8, 3, 14}, {3, 14, 13, 14}},
	'3': {{3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}, {5, 8, 13, 8}},
	'4': {{3, 2, 3, 8}, {3, 8, 13, 8}, {13, 2, 13, 14}},
	'5': {{13, 2, 3, 2}, {3, 2, 3, 8}, {3, 8, 13, 8}, {13, 8, 13, 14}, {13, 14, 3, 14}},
	'6': {{13, 2, 3, 2}, {3, 2, 3, 14}, {3, 14, 13, 14}, {13, 14, 13, 8}, {13, 8, 3, 8}},
	'7': {{3, 2, 13, 2}, {13, 2, 6, 14}},
	'8': {{3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}, {3, 14, 3, 2}, {3, 8, 13, 8}},
	'9': {{13, 8, 3, 8}, {3, 8, 3, 2}, {3, 2, 13, 2}, {13, 2, 13, 14}, {13, 14, 3, 14}},

	'.':  {{8, 13, 8, 14}},
	',':  {{8, 13, 7, 15}},
	'!':  {{8, 2, 8, 10}, {8, 13, 8, 14}},
	'?':  {{3, 2, 13, 2}, {13, 2, 13, 7}, {13, 7, 8, 7}, {8, 7, 8, 10}, {8, 13, 8, 14}},
	':':  {{8, 5, 8, 6}, {8, 11, 8, 12}},
	'-':  {{4, 8, 12, 8}},
	'+':  {{4, 8, 12, 8}, {8, 4, 8, 12}},
	'=':  {{4, 6, 12, 6}, {4, 10, 12, 10}},
	'/':  {{13, 2, 3, 14}},
	'_':  {{3, 14, 13, 14}},
	'*':  {{8, 4, 8, 12}, {4, 6, 12, 10}, {12, 6, 4, 10}},
	'\'': {{8, 2, 8, 5}},
	'"':  {{6, 2, 6, 5}, {10, 2, 10, 5}},
	'(':  {{10, 2, 7, 5}, {7, 5, 7, 11}, {7, 11, 10, 14}},
	')':  {{6, 2, 9, 5}, {9, 5, 9, 11}, {9, 11, 6, 14}},
	'[':  {{10, 2, 6, 2}, {6, 2, 6, 14}, {6, 14, 10, 14}},
	']':  {{6, 2, 10, 2}, {10, 2, 10, 14}, {10, 14, 6, 14}},
	'<':  {{12, 3, 4, 8}, {4, 8, 12, 13}},
	'>':  {{4, 3, 12, 8}, {12, 8, 4, 13}},
	'#':  {{6, 3, 5, 13}, {11, 3, 10, 13}, {3, 6, 13, 6}, {3, 10, 13, 10}},
}

// glyph returns the strokes for r. Unknown runes, including space, have none.
func glyph(r rune) []stroke {
	return strokeFont[unicode.ToUpper(r)]
}

// TextOptions configures a Text entity.
type TextOptions struct {
	// Thickness is the stroke width. Zero draws hairline strokes.
	Thickness float32
	// Extrusion is the stroke depth. Zero draws flat strokes.
	Extrusion float32
	// Capacity is the number of strokes the instance buffers hold. Joint
	// nodes get twice as many slots.
	Capacity int

	// LinkMesh is drawn once per stroke, stretched along it. It should span
	// one unit along X centered on the origin.
	LinkMesh     Mesh
	LinkMaterial Material
	// NodeMesh is drawn at both ends of every stroke to round the joints.
	// Ignored when both Thickness and Extrusion are zero.
	NodeMesh     Mesh
	NodeMaterial Material
}

// Text lays out a string with a built-in stroke font. Every stroke becomes
// one instance of the link mesh and, for thick strokes, two instances of the
// node mesh. Characters advance half a unit; lines are one unit apart and
// grow downwards from the text's position.
type Text struct {
	Entity[*Text]
	Transform

	text      string
	thickness float32
	extrusion float32
	capacity  int
	lines     int
	maxWidth  int

	links *InstancedRenderable
	nodes *InstancedRenderable

	linkBuf []Transform
	nodeBuf []Transform
}

// NewText creates a text entity and lays out str.
func NewText(scene RenderContext, str string, opts TextOptions) (*Text, error) {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultTextCapacity
	}
	t := &Text{
		Transform: NewTransform(),
		thickness: opts.Thickness,
		extrusion: opts.Extrusion,
		capacity:  opts.Capacity,
	}
	t.Name = "text"
	t.Bind(t)

	links, err := NewInstancedRenderableCapacity(scene, opts.LinkMesh, opts.LinkMaterial, opts.Capacity)
	if err != nil {
		return nil, errors.Wrap(err, "text links")
	}
	links.Name = "text.links"
	t.links = links

	if opts.NodeMesh != nil && (opts.Thickness != 0 || opts.Extrusion != 0) {
		nodes, err := NewInstancedRenderableCapacity(scene, opts.NodeMesh, opts.NodeMaterial, 2*opts.Capacity)
		if err != nil {
			links.Dispose()
			return nil, errors.Wrap(err, "text nodes")
		}
		nodes.Name = "text.nodes"
		t.nodes = nodes
		t.AddChild(nodes)
	}
	t.AddChild(links)

	if err := t.SetText(str); err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

// Pose returns the text's transform.
func (t *Text) Pose() *Transform { return &t.Transform }

// Text returns the current string.
func (t *Text) Text() string { return t.text }

// Lines returns the number of laid out lines.
func (t *Text) Lines() int { return t.lines }

// Columns returns the length of the longest line in characters.
func (t *Text) Columns() int { return t.maxWidth }

// Links returns the instanced renderable drawing the strokes.
func (t *Text) Links() *InstancedRenderable { return t.links }

// Nodes returns the instanced renderable drawing the joints, or nil for
// hairline text.
func (t *Text) Nodes() *InstancedRenderable { return t.nodes }

// SetText lays out str. Fails with ErrCapacityExceeded, leaving the
// previous text in place, when str has more strokes than the capacity.
func (t *Text) SetText(str string) error {
	links, nodes, lines, width := t.layout(str)
	if len(links) > t.capacity {
		return errors.Wrapf(ErrCapacityExceeded, "text needs %d strokes, capacity %d", len(links), t.capacity)
	}

	if err := t.links.SetInstances(links); err != nil {
		return err
	}
	if t.nodes != nil {
		if err := t.nodes.SetInstances(nodes); err != nil {
			return err
		}
	}
	t.text, t.lines, t.maxWidth = str, lines, width
	return nil
}

// layout computes the link and node transforms for str.
func (t *Text) layout(str string) (links, nodes []Transform, lines, width int) {
	t.linkBuf = t.linkBuf[:0]
	t.nodeBuf = t.nodeBuf[:0]
	column, row := 0, 0
	for _, r := range str {
		if r == '\n' {
			column = 0
			row++
			continue
		}
		offset := mgl32.Vec3{0.5 * float32(column), -float32(row), 0}
		for _, s := range glyph(r) {
			t.pushStroke(offset, s)
		}
		column++
		width = max(width, column)
	}
	return t.linkBuf, t.nodeBuf, row + 1, width
}

func gridPoint(x, y uint8) mgl32.Vec3 {
	return mgl32.Vec3{0.5 * float32(x) / 16, -float32(y) / 16, 0}
}

func (t *Text) pushStroke(offset mgl32.Vec3, s stroke) {
	p1 := gridPoint(s[0], s[1]).Add(offset)
	p2 := gridPoint(s[2], s[3]).Add(offset)
	d := p2.Sub(p1)

	link := NewTransform()
	link.SetPosition(p1.Add(p2).Mul(0.5))
	link.Rotate(mgl32.Vec3{0, 0, 1}, math32.Atan2(d[1], d[0]))
	switch {
	case t.thickness == 0 && t.extrusion == 0:
		link.SetScale(mgl32.Vec3{d.Len(), 1, 1})
	case t.extrusion == 0:
		link.SetScale(mgl32.Vec3{d.Len(), t.thickness, 1})
	default:
		link.SetScale(mgl32.Vec3{d.Len(), t.thickness, t.extrusion})
	}
	t.linkBuf = append(t.linkBuf, link)

	if t.nodes == nil {
		return
	}
	z := float32(0)
	depth := float32(1)
	if t.extrusion != 0 {
		z = -0.5 * t.extrusion
		depth = t.extrusion
	}
	for _, p := range [2]mgl32.Vec3{p1, p2} {
		n := NewTransform()
		n.SetPosition(mgl32.Vec3{p[0], p[1], z})
		n.SetScale(mgl32.Vec3{t.thickness, t.thickness, depth})
		t.nodeBuf = append(t.nodeBuf, n)
	}
}

// Center returns the middle of the laid out text in the parent's space.
func (t *Text) Center() mgl32.Vec2 {
	p, s := t.Position(), t.Scale()
	return mgl32.Vec2{
		p[0] + s[0]*float32(t.maxWidth)/4,
		p[1] - s[1]*float32(t.lines)/2,
	}
}

// SetCenter moves the text so that Center returns c.
func (t *Text) SetCenter(c mgl32.Vec2) {
	p, s := t.Position(), t.Scale()
	t.SetPosition(mgl32.Vec3{
		c[0] - s[0]*float32(t.maxWidth)/4,
		c[1] + s[1]*float32(t.lines)/2,
		p[2],
	})
}

// SetLinkMaterial replaces the stroke material.
func (t *Text) SetLinkMaterial(m Material) error {
	return t.links.SetMaterial(m)
}

// SetNodeMaterial replaces the joint material.
func (t *Text) SetNodeMaterial(m Material) error {
	if t.nodes == nil {
		return nil
	}
	return t.nodes.SetMaterial(m)
}

// SetMaterials uses m for both strokes and joints.
func (t *Text) SetMaterials(m Material) error {
	if err := t.SetLinkMaterial(m); err != nil {
		return err
	}
	return t.SetNodeMaterial(m)
}

// Render renders the strokes under the text transform.
func (t *Text) Render(dt time.Duration) error {
	return t.RenderWithParent(dt, mgl32.Ident4())
}

// RenderWithParent runs the render systems and renders the strokes with
// parent * local.
func (t *Text) RenderWithParent(dt time.Duration, parent mgl32.Mat4) error {
	if err := t.RenderSystems(dt); err != nil {
		return err
	}
	return renderChildren(&t.Node, dt, parent.Mul4(t.Matrix()))
}
