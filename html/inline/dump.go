package inline

import (
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/linebox/html/render"
)

// Dump writes the lines of [block] in a human readable form,
// one box per row, indented by depth.
func (c *Context) Dump(w io.Writer, block *render.Object) {
	lines := c.LineBoxes(block)
	fmt.Fprintf(w, "%s: %d line(s)\n", block, len(lines))
	for i, root := range lines {
		rb := c.Box(root)
		fmt.Fprintf(w, "line %d [top %g bottom %g, with leading %g %g]\n", i,
			rb.LineTop(), rb.LineBottom(), rb.LineTopWithLeading(), rb.LineBottomWithLeading())
		c.dumpBox(w, root, 1)
		if e := c.EllipsisBox(root); !e.IsNone() {
			c.dumpBox(w, e, 1)
		}
	}
}

func (c *Context) dumpBox(w io.Writer, id BoxID, depth int) {
	b := c.Box(id)
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s %s (%g, %g) w=%g h=%g", indent, b.Kind, id, b.X, b.Y, b.LogicalWidth, c.LogicalHeight(id))
	switch b.Kind {
	case TextLeaf:
		fmt.Fprintf(w, " %q", b.textOf())
		switch t := b.Text.Truncation; t {
		case NoTruncation:
		case FullTruncation:
			fmt.Fprint(w, " truncated")
		default:
			fmt.Fprintf(w, " truncated at %d", t)
		}
	case Ellipsis:
		fmt.Fprintf(w, " %q", b.ellipsis.str)
	case ReplacedLeaf, Flow:
		fmt.Fprintf(w, " %s", b.Object)
	}
	if b.BidiLevel != 0 {
		fmt.Fprintf(w, " level=%d", b.BidiLevel)
	}
	fmt.Fprintln(w)
	if b.flow == nil {
		return
	}
	for child := b.flow.firstChild; !child.IsNone(); child = c.Box(child).nextOnLine {
		c.dumpBox(w, child, depth+1)
	}
}
