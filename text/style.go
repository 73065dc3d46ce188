package text

import (
	"strings"

	"github.com/benoitkugler/linebox/utils"
)

type Fl = utils.Fl

type FontStyle uint8

const (
	FSyNormal FontStyle = iota
	FSyOblique
	FSyItalic
)

// FontDescription selects a face and a size.
type FontDescription struct {
	Family []string
	Style  FontStyle
	Weight uint16 // 400 is normal, 700 is bold
	Size   Fl     // in pixels
}

func (fd FontDescription) key() string {
	var b strings.Builder
	for _, f := range fd.Family {
		b.WriteString(strings.ToLower(f))
		b.WriteByte(',')
	}
	b.WriteByte(byte('0' + fd.Style))
	b.WriteByte(byte(fd.Weight >> 8))
	b.WriteByte(byte(fd.Weight))
	return b.String()
}

// IsBold returns true for weights >= 600.
func (fd FontDescription) IsBold() bool { return fd.Weight >= 600 }

func (fd FontDescription) isSlanted() bool { return fd.Style != FSyNormal }
