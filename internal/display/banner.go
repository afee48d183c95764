package display

import (
	"fmt"
	"os"
	"strings"
)

// ServerInfo holds the information shown in the startup banner.
type ServerInfo struct {
	AppName        string
	AppDescription string
	Version        string

	// LLM provider
	LLMModel    string
	LLMBaseURL  string
	AIAvailable bool

	// Observability
	LogFile string

	// Server
	Port int
}

// PrintBanner prints a colorful startup banner with the server configuration.
func PrintBanner(info ServerInfo) {
	w := os.Stdout

	addr := fmt.Sprintf(":%d", info.Port)
	host := fmt.Sprintf("http://localhost%s", addr)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s%s⚡ %s%s\n", bold, brightCyan, info.AppName, reset)
	fmt.Fprintf(w, "  %s%s━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━%s\n", dim, cyan, reset)
	fmt.Fprintln(w)

	if info.AppDescription != "" {
		desc := info.AppDescription
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		printKV(w, "Description", desc, white)
	}
	if info.Version != "" {
		printKV(w, "Version", info.Version, white)
	}
	fmt.Fprintln(w)

	printSectionHeader(w, "⚙️  AI Configuration")
	if info.AIAvailable {
		printKV(w, "LLM Model", info.LLMModel, brightCyan)
		printKV(w, "LLM Endpoint", maskURL(info.LLMBaseURL), dim+white)
	} else {
		printKV(w, "AI Service", "✗ disabled (set GROQ_API_KEY to enable)", brightYellow)
	}
	printKV(w, "API Log", info.LogFile, dim+white)
	fmt.Fprintln(w)

	printSectionHeader(w, "🌐 Endpoints")
	printEndpoint(w, "Page  ", "GET ", host+"/", brightBlue)
	printEndpoint(w, "Misuse", "POST", host+"/generate_misuse_cases", brightGreen)
	printEndpoint(w, "Save  ", "POST", host+"/save", brightCyan)
	printEndpoint(w, "Health", "GET ", host+"/health", green)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s%s━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━%s\n", dim, cyan, reset)
	fmt.Fprintf(w, "  %s%s🚀 Server listening on %s%s%s%s\n", dim, white, reset, bold+brightGreen, host, reset)
	fmt.Fprintf(w, "  %s%s━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━%s\n", dim, cyan, reset)
	fmt.Fprintln(w)
}

func printSectionHeader(w *os.File, title string) {
	fmt.Fprintf(w, "  %s%s%s%s\n", bold, brightYellow, title, reset)
}

func printKV(w *os.File, key, value, valueColor string) {
	paddedKey := padRight(key, 18)
	fmt.Fprintf(w, "    %s%s%s  %s%s%s\n", dim, paddedKey, reset, valueColor, value, reset)
}

func printEndpoint(w *os.File, label, method, url, color string) {
	paddedLabel := padRight(label, 8)
	fmt.Fprintf(w, "    %s%s%s %s%s%-5s%s %s%s%s\n",
		dim, paddedLabel, reset,
		bold, brightWhite, method, reset,
		color, url, reset,
	)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// maskURL strips trailing slashes for compact display.
func maskURL(rawURL string) string {
	if rawURL == "" {
		return "(not set)"
	}
	return strings.TrimRight(rawURL, "/")
}
