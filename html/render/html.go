package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benoitkugler/linebox/backend"
	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/logger"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// LoadOptions configures [FromHTML].
type LoadOptions struct {
	Fonts    *text.FontConfiguration
	FontSize Fl // default font size, in pixels
	Width    Fl // width of the root block
	Quirks   bool
}

// loader holds the state of one HTML conversion
type loader struct {
	fonts *text.FontConfiguration
	err   error
}

// element is the inherited state of an element being converted
type element struct {
	font  text.FontDescription
	style *pr.Style
}

type handlerFunction = func(l *loader, node *html.Node, parent element) *Object

// elementHandlers maps a tag to a callback creating the object needed,
// for the elements needing special care.
// It is filled in init, since handlers may convert their children.
var elementHandlers map[atom.Atom]handlerFunction

func init() {
	elementHandlers = map[atom.Atom]handlerFunction{
		atom.Br:  handleBr,
		atom.Img: handleImg,
		atom.Li:  handleLi,
	}
}

var blockTags = map[atom.Atom]bool{
	atom.Html: true, atom.Body: true, atom.Div: true, atom.P: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.Ul: true, atom.Ol: true, atom.Section: true, atom.Article: true,
	atom.Blockquote: true, atom.Header: true, atom.Footer: true,
}

var headingSizes = map[atom.Atom]Fl{atom.H1: 2, atom.H2: 1.5, atom.H3: 1.17, atom.H4: 1}

// FromHTML parses an HTML document or fragment and returns
// the root block of its content tree.
func FromHTML(r io.Reader, opts LoadOptions) (*Object, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("invalid HTML input: %s", err)
	}
	if opts.Fonts == nil {
		opts.Fonts = text.NewFontConfiguration()
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 16
	}
	l := loader{fonts: opts.Fonts}

	rootFont := text.FontDescription{Family: []string{"sans-serif"}, Weight: 400, Size: opts.FontSize}
	root := &Object{Kind: BlockKind, Block: &BlockData{IsView: true, Quirks: opts.Quirks}}
	root.Style = pr.NewStyle(l.font(rootFont))
	root.Frame.Width = opts.Width

	body := findBody(doc)
	if body == nil {
		return nil, fmt.Errorf("invalid HTML input: missing body")
	}
	parent := element{font: rootFont, style: root.Style}
	l.convertChildren(body, root, parent)
	if l.err != nil {
		return nil, l.err
	}
	wrapInlineChildren(root)
	return root, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func (l *loader) font(fd text.FontDescription) *text.Font {
	f, err := l.fonts.Font(fd)
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("loading font: %s", err)
	}
	return f
}

func (l *loader) convertChildren(node *html.Node, obj *Object, el element) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			s := collapseWhiteSpace(c.Data)
			if s == "" || (s == " " && obj.IsBlock() && len(obj.Children) == 0) {
				continue
			}
			child := &Object{Kind: TextKind, Node: c, Text: s, Style: el.style}
			obj.AppendChild(child)
		case html.ElementNode:
			if child := l.convertElement(c, el); child != nil {
				obj.AppendChild(child)
				if f := asFloat(child); f != nil {
					if cb := obj.ContainingBlockOrSelf(); cb.Block != nil {
						cb.Block.Floats = append(cb.Block.Floats, *f)
					}
				}
			}
		}
	}
}

// ContainingBlockOrSelf returns [o] for blocks, its containing block otherwise.
func (o *Object) ContainingBlockOrSelf() *Object {
	if o.IsBlock() {
		return o
	}
	return o.ContainingBlock()
}

func collapseWhiteSpace(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// elementStyle computes the style of [node]: inherited properties,
// tag defaults then the style attribute.
func (l *loader) elementStyle(node *html.Node, parent element) element {
	fd := parent.font
	fd.Family = append([]string(nil), fd.Family...)
	style := parent.style.Inherit()
	switch node.DataAtom {
	case atom.B, atom.Strong:
		fd.Weight = 700
	case atom.I, atom.Em:
		fd.Style = text.FSyItalic
	case atom.Code:
		fd.Family = []string{"monospace"}
	case atom.Sub:
		style.VerticalAlign = pr.VerticalAlign{Keyword: pr.VaSub}
		fd.Size *= 0.83
	case atom.Sup:
		style.VerticalAlign = pr.VerticalAlign{Keyword: pr.VaSuper}
		fd.Size *= 0.83
	case atom.Small:
		fd.Size *= 0.83
	case atom.A:
		style.Color = pr.RGBA{R: 0, G: 0, B: 0.93, A: 1}
	case atom.P:
		style.Margin.Top, style.Margin.Bottom = fd.Size, fd.Size
	}
	if factor, ok := headingSizes[node.DataAtom]; ok {
		fd.Size *= factor
		fd.Weight = 700
	}
	declarations := parseStyleAttribute(getAttr(node, "style"))
	// font properties first, since lengths may depend on the font size
	for _, d := range declarations {
		switch d.name {
		case "font-size":
			if dim, ok := parseLength(d.value); ok {
				fd.Size = dim.Resolve(parent.font.Size, parent.font.Size)
			}
		case "font-weight":
			if d.value == "bold" {
				fd.Weight = 700
			} else if w, err := strconv.Atoi(d.value); err == nil {
				fd.Weight = uint16(w)
			}
		case "font-style":
			if d.value == "italic" {
				fd.Style = text.FSyItalic
			}
		case "font-family":
			fd.Family = strings.Split(strings.ReplaceAll(d.value, "\"", ""), ",")
			for i := range fd.Family {
				fd.Family[i] = strings.TrimSpace(fd.Family[i])
			}
		}
	}
	style.Font = l.font(fd)
	for _, d := range declarations {
		applyDeclaration(style, d, fd.Size)
	}
	return element{font: fd, style: style}
}

func (l *loader) convertElement(node *html.Node, parent element) *Object {
	switch node.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Title:
		return nil
	}
	el := l.elementStyle(node, parent)
	if handler, ok := elementHandlers[node.DataAtom]; ok {
		return handler(l, node, el)
	}
	obj := &Object{Kind: InlineKind, Node: node, Style: el.style}
	if blockTags[node.DataAtom] || getAttr(node, "data-display") == "block" {
		obj.Kind = BlockKind
		obj.Block = &BlockData{}
	}
	l.convertChildren(node, obj, el)
	if obj.IsBlock() {
		wrapInlineChildren(obj)
	}
	return obj
}

func getAttr(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func handleBr(_ *loader, node *html.Node, el element) *Object {
	return &Object{Kind: LineBreakKind, Node: node, Text: "\n", Style: el.style}
}

func intAttribute(node *html.Node, key string, defaultValue int) int {
	if v, err := strconv.Atoi(getAttr(node, key)); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

var replacedPlaceholderColor = pr.RGBA{R: 0.8, G: 0.8, B: 0.8, A: 1}

// Handle <img> elements: the image content is not loaded,
// only the size is used.
func handleImg(_ *loader, node *html.Node, el element) *Object {
	w, h := intAttribute(node, "width", 16), intAttribute(node, "height", 16)
	obj := &Object{Kind: ReplacedKind, Node: node, Style: el.style, Baseline: -1}
	obj.Frame = utils.Rect{Width: Fl(w), Height: Fl(h)}
	obj.Draw = func(canvas backend.Canvas, borderBox utils.Rect) {
		backend.FillRect(canvas, borderBox, replacedPlaceholderColor)
	}
	return obj
}

const bullet = "• "

// Handle <li> elements: a block with a marker.
func handleLi(l *loader, node *html.Node, el element) *Object {
	obj := &Object{Kind: BlockKind, Node: node, Style: el.style, Block: &BlockData{}}
	marker := &Object{Kind: ListMarkerKind, Style: el.style.Inherit(), Text: bullet}
	marker.Style.ListStylePosition = pr.Inside
	marker.Frame.Width = el.style.Font.Width(bullet, 0, 0)
	marker.Frame.Height = el.style.FontMetrics().Height()
	obj.AppendChild(marker)
	l.convertChildren(node, obj, el)
	wrapInlineChildren(obj)
	return obj
}

// asFloat returns the float for objects with a float style attribute.
func asFloat(obj *Object) *Float {
	if obj.Node == nil || !obj.IsReplaced() {
		return nil
	}
	side := ""
	for _, d := range parseStyleAttribute(getAttr(obj.Node, "style")) {
		if d.name == "float" {
			side = d.value
		}
	}
	if side != "left" && side != "right" {
		return nil
	}
	// placed by the layout
	return &Float{Object: obj, Right: side == "right"}
}

// IsFloating returns true if [o] is registered as a float of its containing block.
func (o *Object) IsFloating() bool {
	cb := o.ContainingBlock()
	if cb == nil || cb.Block == nil {
		return false
	}
	for _, f := range cb.Block.Floats {
		if f.Object == o {
			return true
		}
	}
	return false
}

// wrapInlineChildren wraps the inline children of a block
// with block children in anonymous blocks.
func wrapInlineChildren(block *Object) {
	if block.ChildrenInline() {
		return
	}
	var (
		newChildren []*Object
		pending     []*Object
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		allSpaces := true
		for _, c := range pending {
			if !(c.IsText() && strings.TrimSpace(c.Text) == "") {
				allSpaces = false
			}
		}
		if !allSpaces {
			anon := &Object{Kind: BlockKind, Style: block.Style.Inherit(), Block: &BlockData{IsAnonymous: true}, Parent: block}
			for _, c := range pending {
				c.Parent = anon
			}
			anon.Children = pending
			moveFloats(block, anon)
			newChildren = append(newChildren, anon)
		}
		pending = nil
	}
	for _, child := range block.Children {
		if child.IsBlock() {
			flush()
			newChildren = append(newChildren, child)
		} else {
			pending = append(pending, child)
		}
	}
	flush()
	block.Children = newChildren
}

// moveFloats registers on [anon] the floats of [block] it now contains.
func moveFloats(block, anon *Object) {
	if block.Block == nil {
		return
	}
	kept := block.Block.Floats[:0]
	for _, f := range block.Block.Floats {
		if f.Object.IsDescendantOf(anon) {
			anon.Block.Floats = append(anon.Block.Floats, f)
		} else {
			kept = append(kept, f)
		}
	}
	block.Block.Floats = kept
}

type declaration struct {
	name, value string
}

func parseStyleAttribute(s string) []declaration {
	var out []declaration
	for _, chunk := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(chunk, ":")
		if !ok {
			continue
		}
		out = append(out, declaration{
			name:  strings.ToLower(strings.TrimSpace(name)),
			value: strings.ToLower(strings.TrimSpace(value)),
		})
	}
	return out
}

func parseLength(s string) (pr.Dimension, bool) {
	units := []struct {
		suffix string
		unit   pr.Unit
	}{{"px", pr.Px}, {"%", pr.Perc}, {"em", pr.Em}, {"", pr.Scalar}}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 32)
		if err != nil {
			return pr.Dimension{}, false
		}
		unit := u.unit
		if unit == pr.Scalar && v == 0 {
			unit = pr.Px
		}
		return pr.Dimension{Value: Fl(v), Unit: unit}, true
	}
	return pr.Dimension{}, false
}

var namedColors = map[string]pr.RGBA{
	"black":       pr.Black,
	"white":       {R: 1, G: 1, B: 1, A: 1},
	"red":         {R: 1, A: 1},
	"green":       {G: 0.5, A: 1},
	"blue":        {B: 1, A: 1},
	"gray":        {R: 0.5, G: 0.5, B: 0.5, A: 1},
	"yellow":      {R: 1, G: 1, A: 1},
	"transparent": pr.Transparent,
}

func parseColor(s string) (pr.RGBA, bool) {
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return pr.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return pr.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return pr.RGBA{}, false
	}
	return pr.RGBA{R: Fl(v>>16) / 255, G: Fl(v>>8&0xff) / 255, B: Fl(v&0xff) / 255, A: 1}, true
}

func parseEdges(s string, fontSize Fl) (pr.Edges, bool) {
	var values []Fl
	for _, f := range strings.Fields(s) {
		dim, ok := parseLength(f)
		if !ok {
			return pr.Edges{}, false
		}
		values = append(values, dim.Resolve(0, fontSize))
	}
	switch len(values) {
	case 1:
		return pr.Edges{Top: values[0], Right: values[0], Bottom: values[0], Left: values[0]}, true
	case 2:
		return pr.Edges{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, true
	case 4:
		return pr.Edges{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, true
	default:
		return pr.Edges{}, false
	}
}

var keywords = map[string]map[string]uint8{
	"vertical-align": {
		"baseline": uint8(pr.VaBaseline), "middle": uint8(pr.VaMiddle), "sub": uint8(pr.VaSub),
		"super": uint8(pr.VaSuper), "text-top": uint8(pr.VaTextTop), "text-bottom": uint8(pr.VaTextBottom),
		"top": uint8(pr.VaTop), "bottom": uint8(pr.VaBottom),
	},
	"direction":       {"ltr": uint8(pr.LTR), "rtl": uint8(pr.RTL)},
	"writing-mode":    {"horizontal-tb": uint8(pr.HorizontalTB), "vertical-rl": uint8(pr.VerticalRL), "vertical-lr": uint8(pr.VerticalLR)},
	"text-align":      {"start": uint8(pr.TaStart), "end": uint8(pr.TaEnd), "left": uint8(pr.TaLeft), "right": uint8(pr.TaRight), "center": uint8(pr.TaCenter), "justify": uint8(pr.TaJustify)},
	"text-overflow":   {"clip": uint8(pr.TextOverflowClip), "ellipsis": uint8(pr.TextOverflowEllipsis)},
	"line-snap":       {"none": uint8(pr.LineSnapNone), "baseline": uint8(pr.LineSnapBaseline), "contain": uint8(pr.LineSnapContain)},
	"visibility":      {"visible": uint8(pr.Visible), "hidden": uint8(pr.Hidden), "collapse": uint8(pr.Collapse)},
	"position":        {"static": uint8(pr.Static), "relative": uint8(pr.Relative), "absolute": uint8(pr.Absolute), "fixed": uint8(pr.Fixed)},
	"unicode-bidi":    {"normal": uint8(pr.LogicalOrder), "visual": uint8(pr.VisualOrder)},
	"ruby-position":   {"before": uint8(pr.RubyBefore), "after": uint8(pr.RubyAfter)},
	"box-decoration-break": {"slice": uint8(pr.DecorationBreakSlice), "clone": uint8(pr.DecorationBreakClone)},
	"text-emphasis-position": {"over": uint8(pr.EmphasisOver), "under": uint8(pr.EmphasisUnder)},
}

var lineBoxContainValues = map[string]pr.LineBoxContain{
	"block": pr.ContainBlock, "inline": pr.ContainInline, "font": pr.ContainFont,
	"glyphs": pr.ContainGlyphs, "replaced": pr.ContainReplaced, "inline-box": pr.ContainInlineBox,
}

// applyDeclaration updates [style]. Unsupported declarations are logged and ignored.
func applyDeclaration(style *pr.Style, d declaration, fontSize Fl) {
	if kws, ok := keywords[d.name]; ok {
		v, ok := kws[d.value]
		if !ok {
			if d.name == "vertical-align" {
				if dim, ok := parseLength(d.value); ok {
					style.VerticalAlign = pr.VerticalAlign{Keyword: pr.VaLength, Length: resolveNonPercent(dim, fontSize)}
					return
				}
			}
			logger.WarningLogger.Printf("invalid value %q for %s", d.value, d.name)
			return
		}
		setKeyword(style, d.name, v)
		return
	}

	ok := true
	switch d.name {
	case "font-size", "font-weight", "font-style", "font-family", "float", "display":
		// already handled
	case "color", "background-color", "border-color", "outline-color":
		var c pr.RGBA
		if c, ok = parseColor(d.value); ok {
			switch d.name {
			case "color":
				style.Color = c
			case "background-color":
				style.BackgroundColor = c
			case "border-color":
				style.BorderColor = c
			default:
				style.OutlineColor = c
			}
		}
	case "line-height":
		if d.value == "normal" {
			style.LineHeight = pr.NormalLineHeight
		} else {
			var dim pr.Dimension
			if dim, ok = parseLength(d.value); ok {
				style.LineHeight = resolveNonPercent(dim, fontSize)
			}
		}
	case "text-indent":
		var dim pr.Dimension
		if dim, ok = parseLength(d.value); ok {
			style.TextIndent = resolveNonPercent(dim, fontSize)
		}
	case "letter-spacing", "word-spacing", "outline-width", "-webkit-text-stroke-width":
		var dim pr.Dimension
		if dim, ok = parseLength(d.value); ok {
			v := dim.Resolve(0, fontSize)
			switch d.name {
			case "letter-spacing":
				style.LetterSpacing = v
			case "word-spacing":
				style.WordSpacing = v
			case "outline-width":
				style.OutlineWidth = v
			default:
				style.TextStrokeWidth = v
			}
		}
	case "margin", "padding", "border-width", "border-image-outset":
		var e pr.Edges
		if e, ok = parseEdges(d.value, fontSize); ok {
			switch d.name {
			case "margin":
				style.Margin = e
			case "padding":
				style.Padding = e
			case "border-width":
				style.Border = e
			default:
				style.BorderImageOutsets = e
			}
		}
	case "text-emphasis-style":
		if d.value == "none" {
			style.TextEmphasisMark = ""
		} else {
			style.TextEmphasisMark = strings.Trim(d.value, "\"'")
		}
	case "line-grid":
		style.LineGrid = d.value
		if d.value == "none" {
			style.LineGrid = ""
		}
	case "line-box-contain":
		var v pr.LineBoxContain
		for _, f := range strings.Fields(d.value) {
			flag, has := lineBoxContainValues[f]
			if !has {
				ok = false
				break
			}
			v |= flag
		}
		if ok {
			style.LineBoxContain = v
		}
	case "box-shadow", "text-shadow":
		var sh pr.Shadow
		if sh, ok = parseShadow(d.value, fontSize); ok {
			if d.name == "box-shadow" {
				style.BoxShadow = append(style.BoxShadow, sh)
			} else {
				style.TextShadow = append(style.TextShadow, sh)
			}
		}
	default:
		logger.WarningLogger.Printf("unsupported CSS property %q", d.name)
		return
	}
	if !ok {
		logger.WarningLogger.Printf("invalid value %q for %s", d.value, d.name)
	}
}

// resolveNonPercent converts em lengths to pixels, keeping
// numbers and percentages, which depend on the line.
func resolveNonPercent(dim pr.Dimension, fontSize Fl) pr.Dimension {
	if dim.Unit == pr.Em {
		return pr.Dimension{Value: dim.Value * fontSize, Unit: pr.Px}
	}
	return dim
}

// parseShadow accepts "<x> <y> [<blur>] [<color>]".
func parseShadow(s string, fontSize Fl) (pr.Shadow, bool) {
	out := pr.Shadow{Color: pr.Black}
	var lengths []Fl
	for _, f := range strings.Fields(s) {
		if dim, ok := parseLength(f); ok {
			lengths = append(lengths, dim.Resolve(0, fontSize))
		} else if c, ok := parseColor(f); ok {
			out.Color = c
		} else {
			return out, false
		}
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return out, false
	}
	out.X, out.Y = lengths[0], lengths[1]
	if len(lengths) >= 3 {
		out.Blur = lengths[2]
	}
	if len(lengths) == 4 {
		out.Spread = lengths[3]
	}
	return out, true
}

func setKeyword(style *pr.Style, name string, v uint8) {
	switch name {
	case "vertical-align":
		style.VerticalAlign = pr.VerticalAlign{Keyword: pr.VerticalAlignKeyword(v)}
	case "direction":
		style.Direction = pr.Direction(v)
	case "writing-mode":
		style.WritingMode = pr.WritingMode(v)
	case "text-align":
		style.TextAlign = pr.TextAlign(v)
	case "text-overflow":
		style.TextOverflow = pr.TextOverflow(v)
	case "line-snap":
		style.LineSnap = pr.LineSnap(v)
	case "visibility":
		style.Visibility = pr.Visibility(v)
	case "position":
		style.Position = pr.Position(v)
	case "unicode-bidi":
		style.RTLOrdering = pr.RTLOrdering(v)
	case "ruby-position":
		style.RubyPosition = pr.RubyPosition(v)
	case "box-decoration-break":
		style.BoxDecorationBreak = pr.BoxDecorationBreak(v)
	case "text-emphasis-position":
		style.TextEmphasisPosition = pr.TextEmphasisPosition(v)
	}
}
