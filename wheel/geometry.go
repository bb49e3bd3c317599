package wheel

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
)

const (
	// StartOffset puts the first segment's leading edge at the top, under the pointer.
	StartOffset = -90.0

	Size        = 384
	Radius      = 192.0
	LabelRadius = 130.0

	strokeColor = "#374151"
)

// Segment is the drawable arc for one item.
type Segment struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Color      Color   `json:"color"`
	Weight     int     `json:"weight"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Sweep      float64 `json:"sweep"`
	MidAngle   float64 `json:"midAngle"`
	Path       string  `json:"path"`
	LabelX     float64 `json:"labelX"`
	LabelY     float64 `json:"labelY"`
	// LabelRotate turns the label so it reads outward along the radius.
	LabelRotate float64 `json:"labelRotate"`
}

// Layout lays the items out clockwise from StartOffset around a circle
// centred at (radius, radius).
func Layout(items []Item, radius, labelRadius float64) []Segment {
	angles := SegmentAngles(items)
	segs := make([]Segment, len(items))
	start := StartOffset
	for i, it := range items {
		sweep := angles[i]
		end := start + sweep
		mid := start + sweep/2

		x1, y1 := polar(radius, radius, start)
		x2, y2 := polar(radius, radius, end)
		largeArc := 0
		if sweep > 180 {
			largeArc = 1
		}
		lx, ly := polar(radius, labelRadius, mid)

		segs[i] = Segment{
			Index:      i,
			Name:       it.Name,
			Label:      it.Label(),
			Color:      it.Color,
			Weight:     it.Weight,
			StartAngle: start,
			EndAngle:   end,
			Sweep:      sweep,
			MidAngle:   mid,
			Path: fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
				num(radius), num(radius), num(x1), num(y1),
				num(radius), num(radius), largeArc, num(x2), num(y2)),
			LabelX:      lx,
			LabelY:      ly,
			LabelRotate: mid + 90,
		}
		start = end
	}
	return segs
}

// RenderSVG writes the wheel rotated by rotation degrees, with the pointer on top.
func RenderSVG(w io.Writer, items []Item, rotation float64) error {
	bw := bufio.NewWriter(w)
	segs := Layout(items, Radius, LabelRadius)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 -70 %d %d">`,
		Size, Size+70, Size, Size+70)
	bw.WriteString("\n")
	fmt.Fprintf(bw, `<g transform="rotate(%s, %s, %s)">`, num(rotation), num(Radius), num(Radius))
	bw.WriteString("\n")
	for _, s := range segs {
		fmt.Fprintf(bw, `<path d="%s" fill="%s" stroke="%s" stroke-width="2"/>`, s.Path, s.Color.Hex(), strokeColor)
		bw.WriteString("\n")
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="white" font-size="16" font-weight="bold" transform="rotate(%s, %s, %s)">%s</text>`,
			num(s.LabelX), num(s.LabelY), num(s.LabelRotate), num(s.LabelX), num(s.LabelY), html.EscapeString(s.Label))
		bw.WriteString("\n")
	}
	bw.WriteString("</g>\n")
	// pointer, tip down onto the top of the wheel
	fmt.Fprintf(bw, `<path d="M %s 0 L %s -60 L %s -60 Z" fill="white"/>`, num(Radius), num(Radius-20), num(Radius+20))
	bw.WriteString("\n</svg>\n")
	return bw.Flush()
}

func polar(center, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return center + r*math.Cos(rad), center + r*math.Sin(rad)
}

func num(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
