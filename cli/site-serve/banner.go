package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	bannerOK   = color.New(color.FgGreen, color.Bold)
	bannerLink = color.New(color.FgCyan)
	bannerHint = color.New(color.FgYellow)
)

func printBanner(w io.Writer, port int, root string) {
	bannerOK.Fprintf(w, "✅ Server running at http://localhost:%d\n", port)
	fmt.Fprintf(w, "📁 Serving files from: %s\n", root)
	bannerLink.Fprintf(w, "🌐 Open http://localhost:%d in your browser\n", port)
	bannerHint.Fprintln(w, "❌ Press Ctrl+C to stop the server")
}

func printStopped(w io.Writer) {
	fmt.Fprintln(w)
	bannerOK.Fprintln(w, "✓ Server stopped")
}
