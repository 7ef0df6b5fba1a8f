package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	blockColor     = lipgloss.Color("#374151") // Dark gray
	blockAltColor  = lipgloss.Color("#4B5563")
	fgColor        = lipgloss.Color("#F9FAFB") // Light

	// Layout styles
	AppStyle    = lipgloss.NewStyle().Padding(1, 2)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)

	// Timeline panel (left side)
	TimelinePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mutedColor).Padding(0, 1)

	// Detail panel (right side)
	DetailPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primaryColor).Padding(1, 2)

	// Timeline rows
	GutterStyle        = lipgloss.NewStyle().Foreground(mutedColor)
	HourStyle          = lipgloss.NewStyle().Foreground(secondaryColor)
	BlockStyle         = lipgloss.NewStyle().Background(blockColor).Foreground(fgColor)
	BlockAltStyle      = lipgloss.NewStyle().Background(blockAltColor).Foreground(fgColor)
	SelectedBlockStyle = lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true)
	DragBlockStyle     = lipgloss.NewStyle().Background(accentColor).Foreground(lipgloss.Color("#111827")).Bold(true)
	PlaceholderStyle   = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	// Detail panel styles
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Width(14)
	ValueStyle = lipgloss.NewStyle().Foreground(fgColor)

	// Conversation
	UserMsgStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	BotMsgStyle  = lipgloss.NewStyle().Foreground(fgColor)

	// Status line in the header
	StatusStyle      = lipgloss.NewStyle().Foreground(secondaryColor)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(errorColor)

	// Forms
	FieldLabelStyle   = lipgloss.NewStyle().Foreground(mutedColor).Width(10)
	FocusedLabelStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Width(10)
	FormErrorStyle    = lipgloss.NewStyle().Foreground(errorColor)

	// Help bar
	HelpStyle    = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
)
