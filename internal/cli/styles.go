package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/zentask/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	categoryColors = map[models.Category]lipgloss.Color{
		models.CategoryWork:     lipgloss.Color("33"),
		models.CategoryPersonal: lipgloss.Color("170"),
		models.CategoryHealth:   lipgloss.Color("42"),
		models.CategoryUrgent:   lipgloss.Color("196"),
		models.CategoryOther:    lipgloss.Color("245"),
	}
)

func Title(s string) string   { return titleStyle.Render(s) }
func Muted(s string) string   { return mutedStyle.Render(s) }
func Danger(s string) string  { return dangerStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }

// Check renders a completion box.
func Check(done bool) string {
	if done {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

// Category renders a category tag in its color.
func Category(c models.Category) string {
	color, ok := categoryColors[c]
	if !ok {
		color = categoryColors[models.CategoryOther]
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(c))
}

// Percent renders a 0-100 value.
func Percent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// ShortID trims a uuid for list output; commands accept any unique prefix.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
