package cli

import (
	"fmt"
	"io"

	"github.com/hession/contextseek/internal/search"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// PrintView writes a rendered view model to w. Layout only; all
// ordering and truncation decisions were made by search.Render.
func PrintView(w io.Writer, vm search.ViewModel) {
	switch vm.Kind {
	case search.ResponseError:
		fmt.Fprintf(w, "%s❌ %s%s\n", colorRed, vm.Error, colorReset)

	case search.ResponseText:
		if len(vm.Items) == 0 {
			fmt.Fprintf(w, "%sNo results found%s\n", colorGray, colorReset)
			return
		}
		fmt.Fprintf(w, "%sSearch Results%s\n", colorCyan, colorReset)
		printItems(w, vm.Items, "  ")

	case search.ResponseImage:
		if len(vm.FaceGroups) == 0 && len(vm.Engines) == 0 {
			fmt.Fprintf(w, "%sNo results found%s\n", colorGray, colorReset)
			return
		}
		if len(vm.FaceGroups) > 0 {
			fmt.Fprintf(w, "%sFace Matches%s\n", colorCyan, colorReset)
			for _, group := range vm.FaceGroups {
				fmt.Fprintf(w, "  %sFace #%d Matches%s\n", colorYellow, group.Number, colorReset)
				printEngines(w, group.Engines, "    ")
			}
		}
		if len(vm.Engines) > 0 {
			fmt.Fprintf(w, "%sGeneral Image Matches%s\n", colorCyan, colorReset)
			printEngines(w, vm.Engines, "  ")
		}

	case search.ResponseVideo:
		if vm.Video == nil {
			fmt.Fprintf(w, "%sNo results found%s\n", colorGray, colorReset)
			return
		}
		fmt.Fprintf(w, "%sVideo Context%s\n", colorCyan, colorReset)
		fmt.Fprintf(w, "  %s%s%s (%s)\n", colorBlue, vm.Video.Title, colorReset, vm.Video.Source)
		fmt.Fprintf(w, "  %s%s%s\n", colorGray, vm.Video.URL, colorReset)
		for _, match := range vm.Video.Matches {
			fmt.Fprintf(w, "  • [%s] %s\n", match.Time, match.Context)
		}
	}
}

func printEngines(w io.Writer, engines []search.EngineView, indent string) {
	for _, engine := range engines {
		fmt.Fprintf(w, "%s%s[%s]%s\n", indent, colorGreen, engine.Name, colorReset)
		if engine.Error != "" {
			fmt.Fprintf(w, "%s  %sError: %s%s\n", indent, colorRed, engine.Error, colorReset)
			continue
		}
		if len(engine.Items) == 0 {
			fmt.Fprintf(w, "%s  %s(no results)%s\n", indent, colorGray, colorReset)
			continue
		}
		printItems(w, engine.Items, indent+"  ")
	}
}

func printItems(w io.Writer, items []search.ItemView, indent string) {
	for _, item := range items {
		if item.Label != item.URL {
			fmt.Fprintf(w, "%s• %s\n%s  %s%s%s\n", indent, item.Label, indent, colorGray, item.URL, colorReset)
		} else {
			fmt.Fprintf(w, "%s• %s\n", indent, item.URL)
		}
	}
}
