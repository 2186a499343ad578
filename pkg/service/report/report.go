// Package report renders a patient's visit history as a PDF document.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/signintech/gopdf"
)

const (
	fontName     = "report"
	marginLeft   = 40.0
	marginTop    = 40.0
	textWidth    = 515.0
	pageBottom   = 800.0
	dateLayout   = "2006-01-02 15:04"
	lineHeight   = 14.0
	headingSize  = 18
	sectionSize  = 13
	bodySize     = 10
	footnoteSize = 8
)

// DefaultFontPaths are tried in order when no font is configured
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

// Data is the content of a visit report
type Data struct {
	Patient     *model.Patient
	Visits      []*model.Visit
	GeneratedAt time.Time
}

type Generator struct {
	fontPaths []string
}

// New creates a generator using the first loadable TrueType font of fontPaths,
// or DefaultFontPaths when none are given
func New(fontPaths ...string) *Generator {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &Generator{fontPaths: fontPaths}
}

// doc wraps gopdf with a cursor that breaks pages
type doc struct {
	pdf *gopdf.GoPdf
	err error
}

func (d *doc) setFont(size float64) {
	if d.err != nil {
		return
	}
	if err := d.pdf.SetFont(fontName, "", size); err != nil {
		d.err = goerr.Wrap(err, "failed to set font", goerr.V("size", size))
	}
}

func (d *doc) ensureSpace(h float64) {
	if d.pdf.GetY()+h > pageBottom {
		d.pdf.AddPage()
		d.pdf.SetX(marginLeft)
		d.pdf.SetY(marginTop)
	}
}

// paragraph writes text wrapped to the page width
func (d *doc) paragraph(text string) {
	if d.err != nil {
		return
	}
	for _, raw := range strings.Split(text, "\n") {
		lines, err := d.pdf.SplitText(raw, textWidth)
		if err != nil {
			// SplitText rejects empty input
			lines = []string{""}
		}
		for _, l := range lines {
			d.ensureSpace(lineHeight)
			d.pdf.SetX(marginLeft)
			if err := d.pdf.Cell(nil, l); err != nil {
				d.err = goerr.Wrap(err, "failed to write text")
				return
			}
			d.pdf.Br(lineHeight)
		}
	}
}

func (d *doc) gap(h float64) {
	d.ensureSpace(h)
	d.pdf.Br(h)
}

// Generate writes the report for data to w
func (g *Generator) Generate(w io.Writer, data *Data) error {
	if data == nil || data.Patient == nil {
		return goerr.New("report requires a patient")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	var fontErr error
	loaded := ""
	for _, path := range g.fontPaths {
		if err := pdf.AddTTFFont(fontName, path); err != nil {
			fontErr = err
			continue
		}
		loaded = path
		break
	}
	if loaded == "" {
		return goerr.Wrap(fontErr, "no usable TrueType font for report", goerr.V("paths", g.fontPaths))
	}

	pdf.AddPage()
	pdf.SetX(marginLeft)
	pdf.SetY(marginTop)
	d := &doc{pdf: pdf}

	p := data.Patient
	generatedAt := data.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	d.setFont(headingSize)
	d.paragraph("Patient Visit Report")
	d.gap(8)

	d.setFont(bodySize)
	d.paragraph(fmt.Sprintf("Patient ID: %s", p.ID))
	d.paragraph(fmt.Sprintf("Name: %s", p.Name))
	d.paragraph(fmt.Sprintf("Age: %d", p.Age))
	d.paragraph(fmt.Sprintf("Gender: %s", p.Gender))
	d.paragraph(fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(dateLayout)))
	d.gap(12)

	d.setFont(sectionSize)
	d.paragraph("Previous Visits")
	d.gap(4)

	d.setFont(bodySize)
	if len(data.Visits) == 0 {
		d.paragraph("No closed visits recorded.")
	}
	for i, v := range data.Visits {
		d.setFont(sectionSize - 2)
		d.paragraph(fmt.Sprintf("Visit %d (%s)", i+1, v.Date.UTC().Format(dateLayout)))
		d.setFont(bodySize)
		d.paragraph("Chief Complaint: " + v.ChiefComplaint)
		if v.Symptoms != "" {
			d.paragraph("Symptoms: " + v.Symptoms)
		}
		if v.Diagnoses != "" {
			d.paragraph("Differential Diagnoses: " + v.Diagnoses)
		}
		if v.Summary != "" {
			d.paragraph("Summary: " + v.Summary)
		}
		d.gap(8)
	}

	d.gap(12)
	d.setFont(footnoteSize)
	d.paragraph("Advisory output of an AI assistant. Not a diagnosis or prescription.")

	if d.err != nil {
		return d.err
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write PDF")
	}
	return nil
}
