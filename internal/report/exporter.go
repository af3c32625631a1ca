package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ErrExportInProgress is returned when Export is called while an
// earlier export has not finished
var ErrExportInProgress = errors.New("an export is already in progress")

// restoreTimeout bounds the visibility restore step when the export
// context is already cancelled
const restoreTimeout = 10 * time.Second

// Snapshot is a raster capture of the full scrollable extent of the
// report region. Width and Height are the raster's pixel dimensions.
type Snapshot struct {
	PNG    []byte
	Width  int
	Height int
}

// Region is a rendered report region that can be captured. Hide makes
// the elements marked for exclusion (action buttons) invisible; Restore
// reverts that. The exporter guarantees Restore runs on every exit
// path, including capture failure.
type Region interface {
	Hide(ctx context.Context) error
	Restore(ctx context.Context) error
	Capture(ctx context.Context) (Snapshot, error)
	Close() error
}

// Document is a finished, downloadable report. Pages may be zero for an
// empty region, in which case Data is nil.
type Document struct {
	Name  string
	Pages int
	Data  []byte
}

// FileName builds the exported file name from the subject identifier
// echoed by the prediction service, falling back to a fixed token when
// the result carries none.
func FileName(subjectID *int64) string {
	if subjectID == nil {
		return "corex_report_patient.pdf"
	}
	return fmt.Sprintf("corex_report_%d.pdf", *subjectID)
}

// Exporter turns a captured report region into a paginated PDF. At most
// one export runs at a time; overlapping calls would race on the
// region's hidden-element state.
type Exporter struct {
	busy atomic.Bool
}

// NewExporter creates a new report exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export captures the region and assembles the PDF. On any failure no
// partial document is returned, and the region's hidden elements are
// restored before Export returns.
func (e *Exporter) Export(ctx context.Context, region Region, format PageFormat, subjectID *int64) (doc *Document, err error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)

	// Restore must run even when the export context is cancelled or a
	// later step fails, so it gets its own deadline. It is deferred
	// before Hide so a partial hide is still undone.
	defer func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		if rerr := region.Restore(rctx); rerr != nil && err == nil {
			doc = nil
			err = fmt.Errorf("restore excluded elements: %w", rerr)
		}
	}()

	if err := region.Hide(ctx); err != nil {
		return nil, fmt.Errorf("hide excluded elements: %w", err)
	}

	snapshot, err := region.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture report region: %w", err)
	}

	plan := Paginate(snapshot.Width, snapshot.Height, format)
	doc = &Document{Name: FileName(subjectID), Pages: plan.Pages()}
	if plan.Pages() == 0 {
		return doc, nil
	}

	data, err := assemble(plan, format, snapshot.PNG)
	if err != nil {
		return nil, fmt.Errorf("assemble report document: %w", err)
	}
	doc.Data = data
	return doc, nil
}

// assemble writes the pagination plan into a PDF. The full composite
// image is registered once and re-placed on every page at that page's
// negative vertical offset, relying on page clipping to reveal only the
// matching slice.
func assemble(plan Plan, format PageFormat, png []byte) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: format.Width, Ht: format.Height},
	})
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader("report", opts, bytes.NewReader(png))

	for _, offset := range plan.Offsets {
		pdf.AddPage()
		pdf.ImageOptions("report", 0, offset, plan.ImageWidth, plan.ImageHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
