package infrastructure

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unipdf/v3/creator"

	"resume-screener/domain"
)

// reportCriteria fixes the four table rows and their order.
var reportCriteria = []struct {
	label string
	key   string
}{
	{"Skills", domain.CriterionSkills},
	{"Experience", domain.CriterionExperience},
	{"Education", domain.CriterionEducation},
	{"Domain Knowledge", domain.CriterionDomainKnowledge},
}

// BuildReport renders one evaluation result as a paginated PDF: title,
// info block, fixed criteria table and summary. Every field access
// defaults, so a minimally populated fallback result still produces a
// document.
func BuildReport(result domain.EvaluationResult) ([]byte, error) {
	c := creator.New()
	c.SetPageMargins(50, 50, 50, 50)

	title := c.NewParagraph("Resume Evaluation Report")
	title.SetFontSize(18)
	title.SetTextAlignment(creator.TextAlignmentCenter)
	title.SetMargins(0, 0, 0, 20)
	if err := c.Draw(title); err != nil {
		return nil, fmt.Errorf("failed to draw title: %w", err)
	}

	filename := result.Filename
	if filename == "" {
		filename = "N/A"
	}
	for _, line := range []string{
		fmt.Sprintf("Filename: %s", filename),
		fmt.Sprintf("Overall Score: %d/10", result.OverallScore),
	} {
		p := c.NewParagraph(line)
		p.SetFontSize(12)
		p.SetMargins(0, 0, 0, 6)
		if err := c.Draw(p); err != nil {
			return nil, fmt.Errorf("failed to draw info block: %w", err)
		}
	}

	table := c.NewTable(2)
	if err := table.SetColumnWidths(0.6, 0.4); err != nil {
		return nil, fmt.Errorf("failed to size table: %w", err)
	}
	addCell := func(text string, header bool) {
		cell := table.NewCell()
		cell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, 1)
		cell.SetHorizontalAlignment(creator.CellHorizontalAlignmentCenter)
		if header {
			cell.SetBackgroundColor(creator.ColorRGBFrom8bit(128, 128, 128))
		}
		p := c.NewParagraph(text)
		p.SetFontSize(11)
		_ = cell.SetContent(p)
	}

	addCell("Criteria", true)
	addCell("Score (/10)", true)
	for _, row := range reportCriteria {
		addCell(row.label, false)
		score := "N/A"
		if v, ok := result.SubScores[row.key]; ok {
			score = fmt.Sprintf("%d", v)
		}
		addCell(score, false)
	}
	if err := c.Draw(table); err != nil {
		return nil, fmt.Errorf("failed to draw score table: %w", err)
	}

	summary := result.Summary
	if summary == "" {
		summary = "No summary available."
	}
	sp := c.NewParagraph("Summary: " + summary)
	sp.SetFontSize(12)
	sp.SetMargins(0, 0, 20, 0)
	if err := c.Draw(sp); err != nil {
		return nil, fmt.Errorf("failed to draw summary: %w", err)
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
