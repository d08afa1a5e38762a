package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

const headerArt = `
 __   __        _ __  __         _     _
 \ \ / /__ _ _ (_)  \/  |___  __| |___| |
  \ V / -_) '_|| | |\/| / _ \/ _' / -_) |
   \_/\___|_|  |_|_|  |_\___/\__,_\___|_|
`

func showHeader(w io.Writer) {
	fmt.Fprintln(w, cyan.Bold(true).Render(headerArt))
}
