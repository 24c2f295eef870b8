package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bryanwahyu/neuro-fusion/internal/client"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/analysis"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/condition"
	"github.com/bryanwahyu/neuro-fusion/internal/domain/prediction"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			MarginBottom(1)
)

func riskStyle(r prediction.RiskLevel) lipgloss.Style {
	switch r {
	case prediction.RiskHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	case prediction.RiskMedium:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	}
}

// confidenceBar draws a 20 cell bar for a confidence in [0,1].
func confidenceBar(c float64) string {
	const width = 20
	filled := int(c*width + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func renderPredictions(res *client.PredictResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analysis Results"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · %s",
		res.Metadata.ModelType,
		strings.Join(res.Metadata.ModalitiesProcessed, ", "),
		res.Metadata.Timestamp.Format("2006-01-02 15:04:05 MST"))))
	b.WriteString("\n\n")

	for i, p := range res.Predictions {
		var card strings.Builder
		fmt.Fprintf(&card, "%s %s\n", headerStyle.Render(fmt.Sprintf("#%d", i+1)), lipgloss.NewStyle().Bold(true).Render(string(p.Condition)))
		fmt.Fprintf(&card, "Confidence %s %.0f%%\n", confidenceBar(p.Confidence), p.Confidence*100)
		fmt.Fprintf(&card, "Risk level %s\n", riskStyle(p.RiskLevel).Render(string(p.RiskLevel)))
		card.WriteString("Recommendations:")
		for _, r := range p.Recommendations {
			fmt.Fprintf(&card, "\n  • %s", r)
		}
		b.WriteString(cardStyle.Render(card.String()))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("These results are for research purposes only and are not a medical diagnosis."))
	b.WriteString("\n")
	return b.String()
}

func renderConditions(conds []condition.Info) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Screened Conditions"))
	b.WriteString("\n\n")
	for _, c := range conds {
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(c.Name), mutedStyle.Render("("+c.ID+")"))
		fmt.Fprintf(&b, "  %s\n", c.Description)
		fmt.Fprintf(&b, "  Symptoms: %s\n", strings.Join(c.Symptoms, ", "))
		fmt.Fprintf(&b, "  Prevalence: %s\n", c.Prevalence)
		fmt.Fprintf(&b, "  Early detection: %s\n\n", strings.Join(c.EarlyDetectionBenefits, ", "))
	}
	return b.String()
}

func renderStatus(s analysis.ModalityStatus) string {
	mark := func(ok bool) string {
		if ok {
			return successStyle.Render("✓")
		}
		return errorStyle.Render("✗")
	}
	return fmt.Sprintf("%s MRI  %s EEG  %s Clinical Notes", mark(s.MRI), mark(s.EEG), mark(s.ClinicalNotes))
}

func renderHistory(runs []analysis.Run) string {
	if len(runs) == 0 {
		return mutedStyle.Render("No prediction runs recorded yet.") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent Prediction Runs"))
	b.WriteString("\n\n")
	for _, r := range runs {
		top := "-"
		if len(r.Predictions) > 0 {
			top = fmt.Sprintf("%s (%.2f)", r.Predictions[0].Condition, r.Predictions[0].Confidence)
		}
		status := successStyle.Render(string(r.Status))
		if r.Status != analysis.StatusSuccess {
			status = errorStyle.Render(string(r.Status))
		}
		fmt.Fprintf(&b, "%s  %s  %-7s  %5dms  %s\n",
			mutedStyle.Render(r.CreatedAt.Format("2006-01-02 15:04:05")),
			r.ID, status, r.DurationMS, top)
	}
	return b.String()
}
