// Package tui provides the interactive terminal UI for hanzicam.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF6B6B") // Red - titles, errors
	ColorSecondary = lipgloss.Color("#4ecdc4") // Teal - pinyin, subtitles
	ColorAccent    = lipgloss.Color("#ffe66d") // Yellow - characters
	ColorMuted     = lipgloss.Color("#666666") // Gray - help text
	ColorSuccess   = lipgloss.Color("#a8e6cf") // Green - success
	ColorText      = lipgloss.Color("#f1faee")
	ColorBg        = lipgloss.Color("#1a1a2e")
	ColorBgAlt     = lipgloss.Color("#2d3436")
	ColorBorder    = lipgloss.Color("#3d5a80")
)

// Sidebar styles
var (
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderRight(true).
			BorderForeground(ColorBorder).
			Padding(1, 1)

	SidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Background(ColorBg).
				Padding(0, 1).
				MarginBottom(1)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	SidebarItemActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Background(ColorBgAlt).
				Padding(0, 1)

	SidebarHelpStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				MarginTop(1).
				Padding(0, 1)
)

// Notification bar styles, one per level.
var (
	NoteInfoStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Padding(0, 1)

	NoteSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true).
				Padding(0, 1)

	NoteErrorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)
)

// Content area style
var ContentStyle = lipgloss.NewStyle().
	Padding(1, 2)
