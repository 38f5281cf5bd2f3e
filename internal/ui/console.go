// Package ui provides styled console output for the Turngate server:
// colorized status badges, dispatch logging, and startup messages.
package ui

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)

	neonBlue = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// PrintGatewayInfo logs general gateway information.
// Format: [GATEWAY] message
func PrintGatewayInfo(msg string) {
	infoBadge.Print("[GATEWAY]")
	fmt.Print(" ")
	infoText.Println(msg)
}

// PrintRunAccepted logs an accepted async run.
// Format: 🚀 [ACCEPTED] endpoint | run:xxxxxxxx
func PrintRunAccepted(endpointID, runID string) {
	fmt.Print("🚀 ")
	infoBadge.Print("[ACCEPTED]")
	fmt.Print(" ")
	accentText.Print(endpointID)
	mutedText.Printf(" | run:%s\n", shortenID(runID))
}

// PrintRateLimited logs a rejected request.
// Format: 🛑 [LIMITED] endpoint rate limit exceeded
func PrintRateLimited(endpointID string) {
	fmt.Print("🛑 ")
	warningBadge.Print("[LIMITED]")
	fmt.Print(" ")
	warningText.Print(endpointID)
	mutedText.Println(" rate limit exceeded")
}

// PrintRequest logs a request with styled output.
// Color-codes status, method, and latency for quick visual parsing.
func PrintRequest(method, path string, status int, latency time.Duration) {
	mutedText.Printf("%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	fmt.Print(" ")

	fmt.Printf("%-30s ", truncatePath(path, 30))

	printStatusBadge(status)
	fmt.Print(" ")

	printLatency(latency)
	fmt.Println()
}

// printMethodBadge prints the HTTP method with appropriate color.
func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Printf(" %s ", method)
	case "GET":
		methodGET.Printf(" %s ", method)
	default:
		debugBadge.Printf(" %s ", method)
	}
}

// printStatusBadge prints the status code with appropriate color.
func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Printf(" %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Printf(" %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Printf(" %d ", status)
	default:
		errorBadge.Printf(" %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Green: < 100ms, Yellow: < 500ms, Red: >= 500ms
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%4dms", ms)

	switch {
	case ms < 100:
		successText.Print(latencyStr)
	case ms < 500:
		warningText.Print(latencyStr)
	default:
		errorText.Print(latencyStr)
	}
}

// shortenID returns a short display form of a run id.
func shortenID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncatePath truncates a path to maxLen characters.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(host string, port int, basePath string, endpointCount int) {
	fmt.Println()
	infoBadge.Print("[GATEWAY]")
	fmt.Print(" Server starting on ")
	neonBlue.Printf("http://%s:%d\n", host, port)

	infoBadge.Print("[GATEWAY]")
	fmt.Print(" Endpoints: ")
	if endpointCount > 0 {
		successText.Printf("%d", endpointCount)
	} else {
		warningText.Print("0 (dispatch disabled)")
	}
	fmt.Print(" | Base path: ")
	accentText.Println(basePath)

	fmt.Println()
	printRoutes(basePath)
}

// printRoutes prints the available HTTP routes.
func printRoutes(basePath string) {
	mutedText.Println("  ┌─────────────────────────────────────────────────────────┐")
	mutedText.Print("  │ ")
	methodPOST.Print(" POST ")
	fmt.Printf(" %-21s", basePath+"/{id}")
	mutedText.Print("  Dispatch a message to an agent  ")
	mutedText.Println(" │")

	mutedText.Print("  │ ")
	methodGET.Print(" GET  ")
	fmt.Print(" /health              ")
	mutedText.Print("  Health check                    ")
	mutedText.Println(" │")

	mutedText.Println("  └─────────────────────────────────────────────────────────┘")
	fmt.Println()
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Println()
	warningBadge.Print("[SHUTDOWN]")
	warningText.Println(" Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Print(" OK ")
	fmt.Print(" ")
	successText.Println("Server stopped. Goodbye! 👋")
}
