package report

import "math"

// PageFormat is a fixed document page size in points
type PageFormat struct {
	Width  float64
	Height float64
}

// A4Portrait is the only page format the exporter currently emits
var A4Portrait = PageFormat{Width: 595.28, Height: 841.89}

// Plan describes one pagination run: the captured source dimensions,
// the composite image scaled into page space, and the vertical offset
// at which the full image is re-placed on each page. Page clipping
// reveals only that page's slice.
type Plan struct {
	SourceWidth  int
	SourceHeight int
	ImageWidth   float64
	ImageHeight  float64
	Offsets      []float64
}

// Paginate computes the page layout for a captured region. The image is
// scaled so its width fills the page width exactly, then cut into
// ceil(imageHeight/pageHeight) pages. Pagination depends only on the
// height-to-width ratio, so the capture scale cancels out and regions
// wider than tall still paginate correctly. A zero-height (or
// zero-width) region yields an empty plan rather than an error.
func Paginate(srcWidth, srcHeight int, format PageFormat) Plan {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Plan{SourceWidth: srcWidth, SourceHeight: srcHeight}
	}

	imageHeight := float64(srcHeight) * format.Width / float64(srcWidth)
	pages := int(math.Ceil(imageHeight / format.Height))

	offsets := make([]float64, pages)
	for k := range offsets {
		offsets[k] = -format.Height * float64(k)
	}

	return Plan{
		SourceWidth:  srcWidth,
		SourceHeight: srcHeight,
		ImageWidth:   format.Width,
		ImageHeight:  imageHeight,
		Offsets:      offsets,
	}
}

// Pages returns the number of pages the plan produces
func (p Plan) Pages() int {
	return len(p.Offsets)
}
