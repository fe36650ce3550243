package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/ui"
)

// customHelpFunc renders colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	fmt.Fprintf(os.Stdout, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)

	if cmd.Short != "" {
		fmt.Fprintf(os.Stdout, "%s\n", cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(os.Stdout, "\n%s\n", cmd.Long)
	}

	fmt.Fprintf(os.Stdout, "\n%sUsage%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
	if cmd.Runnable() {
		fmt.Fprintf(os.Stdout, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasExample() {
		fmt.Fprintf(os.Stdout, "\n%sExamples%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				fmt.Fprintf(os.Stdout, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			} else {
				fmt.Fprintf(os.Stdout, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "\n%sCommands%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)

		maxLen := 0
		var available []*cobra.Command
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && c.Name() != "help" {
				available = append(available, c)
				if len(c.Name()) > maxLen {
					maxLen = len(c.Name())
				}
			}
		}
		for _, c := range available {
			padding := strings.Repeat(" ", maxLen-len(c.Name())+2)
			fmt.Fprintf(os.Stdout, "  %s%s%s%s%s%s%s\n",
				ui.ColorCyan, c.Name(), ui.ColorReset,
				padding,
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(os.Stdout, "\n%sFlags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlags(cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(os.Stdout, "\n%sGlobal Flags%s\n", ui.ColorBold+ui.ColorWhite, ui.ColorReset)
		printFlags(cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(os.Stdout, "\n%sUse \"%s <command> --help\" for more information about a command.%s\n",
			ui.ColorDim, cmd.CommandPath(), ui.ColorReset)
	}
	fmt.Fprintln(os.Stdout)
}

// printFlags prints flag usages with dimmed descriptions
func printFlags(flagUsages string) {
	for _, line := range strings.Split(flagUsages, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "-") {
			fmt.Fprintf(os.Stdout, "      %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}
		parts := strings.SplitN(trimmed, "   ", 2)
		if len(parts) == 2 {
			fmt.Fprintf(os.Stdout, "  %s%-32s%s %s%s%s\n",
				ui.ColorGreen, strings.TrimSpace(parts[0]), ui.ColorReset,
				ui.ColorDim, strings.TrimSpace(parts[1]), ui.ColorReset)
		} else {
			fmt.Fprintf(os.Stdout, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
		}
	}
}
