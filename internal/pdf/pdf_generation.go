package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"digi3/internal/models"
)

// Generator renders reports (handy to mock in tests).
type Generator interface {
	ProjectReport(w io.Writer, data ProjectReportData) error
}

// ReportGenerator renders with a TTF font when FontPath exists and with the
// core Helvetica font otherwise.
type ReportGenerator struct {
	FontPath string // e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
	utf8     bool
}

type ProjectReportData struct {
	Project     *models.Project
	ManagerName string
	Columns     []Column
	GeneratedAt time.Time
}

type Column struct {
	Status models.TaskStatus
	Tasks  []*models.Task
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
			g.utf8 = true
		}
	}
	return g
}

func (g *ReportGenerator) ProjectReport(w io.Writer, data ProjectReportData) error {
	if data.Project == nil {
		return fmt.Errorf("project report: no project")
	}
	p := data.Project

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Projet %s", p.Name), g.utf8)
	pdf.SetAuthor("Digi3", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)
	pdf.AddPage()

	// title
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr(p.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, tr("Rapport du "+data.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, tr("Projet"))
	g.kvLine(pdf, tr("Statut"), string(p.Status))
	manager := data.ManagerName
	if manager == "" {
		manager = "-"
	}
	g.kvLine(pdf, tr("Responsable"), tr(manager))
	g.kvLine(pdf, tr("Début"), dateOrDash(p.StartDate))
	g.kvLine(pdf, tr("Échéance"), dateOrDash(p.TargetDate))
	if p.Description != "" {
		pdf.Ln(1)
		pdf.MultiCell(0, 6, tr(p.Description), "", "L", false)
	}
	pdf.Ln(2)
	g.hr(pdf)

	for _, col := range data.Columns {
		g.sectionTitle(pdf, tr(fmt.Sprintf("%s (%d)", col.Status, len(col.Tasks))))
		if len(col.Tasks) == 0 {
			pdf.CellFormat(0, 6, "-", "", 1, "L", false, 0, "")
			continue
		}
		for _, t := range col.Tasks {
			line := fmt.Sprintf("%d. %s  [%s, %s]", t.Rank, t.Name, t.Priority, t.Complexity)
			pdf.MultiCell(0, 6, tr(line), "", "L", false)
		}
		pdf.Ln(1)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return pdf.Output(w)
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

// === helpers ===

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if !g.utf8 {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 to cp1252 for the core fonts.
func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.utf8 {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
