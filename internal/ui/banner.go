// Package ui provides styled console output for the Turngate server.
package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintBanner displays the ASCII art startup banner.
func PrintBanner() {
	fmt.Println()

	cyan := color.New(color.FgCyan, color.Bold)
	hiCyan := color.New(color.FgHiCyan)
	hiMagenta := color.New(color.FgHiMagenta)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	dim := color.New(color.FgHiBlack)

	hiCyan.Println("████████╗██╗   ██╗██████╗ ███╗   ██╗ ██████╗  █████╗ ████████╗███████╗")
	hiCyan.Println("╚══██╔══╝██║   ██║██╔══██╗████╗  ██║██╔════╝ ██╔══██╗╚══██╔══╝██╔════╝")
	hiMagenta.Println("   ██║   ██║   ██║██████╔╝██╔██╗ ██║██║  ███╗███████║   ██║   █████╗  ")
	hiMagenta.Println("   ██║   ██║   ██║██╔══██╗██║╚██╗██║██║   ██║██╔══██║   ██║   ██╔══╝  ")
	cyan.Println("   ██║   ╚██████╔╝██║  ██║██║ ╚████║╚██████╔╝██║  ██║   ██║   ███████╗")
	cyan.Println("   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚══════╝")

	yellow.Print("   ⚡ TURNGATE")
	dim.Print("  │  ")
	hiMagenta.Print("AGENT DISPATCH GATEWAY")
	dim.Print("  │  ")
	white.Println("v1.0.0")

	fmt.Println()
}

// PrintMiniBanner displays a smaller, simpler banner for constrained terminals.
func PrintMiniBanner() {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Println()
	cyan.Print("╔══════════════════════════════════════╗")
	fmt.Println()
	cyan.Print("║  ")
	magenta.Print("TURNGATE")
	yellow.Print(" ⚡ ")
	cyan.Print("DISPATCH GATEWAY     ")
	cyan.Print("║")
	fmt.Println()
	cyan.Print("╚══════════════════════════════════════╝")
	fmt.Println()
	fmt.Println()
}
