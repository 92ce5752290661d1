// internal/cli/list_commands.go
package voi

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	calculationsGroup = "calculations"
	toolsGroup        = "tools"

	// inputsAnnotation names the scenario sections a calculation reads.
	inputsAnnotation = "voi/inputs"
)

var (
	groupStyle = lipgloss.NewStyle().Bold(true)
	pathStyle  = lipgloss.NewStyle().PaddingLeft(2)
	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Group commands for listing resources",
	GroupID: toolsGroup,
}

// commandsCmd implements 'list commands'. Commands are grouped the way
// --help groups them, and each calculation shows which scenario sections it
// needs so a partial scenario can be checked before running it.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List commands by group with the scenario inputs each calculation reads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeCommandGroups(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(listCmd)
}

type commandEntry struct {
	path   string
	short  string
	inputs string
}

// writeCommandGroups prints every registered group in order, then any
// ungrouped commands, skipping help and completion.
func writeCommandGroups(w io.Writer, root *cobra.Command) error {
	byGroup := map[string][]commandEntry{}
	width := 0
	for _, c := range root.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		for _, e := range flattenCommand(c, root.Name()) {
			width = max(width, lipgloss.Width(e.path))
			byGroup[c.GroupID] = append(byGroup[c.GroupID], e)
		}
	}

	titles := make([]string, 0, len(root.Groups())+1)
	ids := make([]string, 0, len(root.Groups())+1)
	for _, g := range root.Groups() {
		titles = append(titles, g.Title)
		ids = append(ids, g.ID)
	}
	titles = append(titles, "Other:")
	ids = append(ids, "")

	col := pathStyle.Width(width + 4)
	for i, id := range ids {
		entries := byGroup[id]
		if len(entries) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, groupStyle.Render(titles[i])); err != nil {
			return err
		}
		for _, e := range entries {
			line := col.Render(e.path) + e.short
			if e.inputs != "" {
				line += " " + inputStyle.Render("["+e.inputs+"]")
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// flattenCommand returns c and its runnable descendants as full paths.
func flattenCommand(c *cobra.Command, parent string) []commandEntry {
	path := strings.TrimSpace(parent + " " + c.Name())
	var out []commandEntry
	if c.Runnable() {
		out = append(out, commandEntry{path: path, short: c.Short, inputs: c.Annotations[inputsAnnotation]})
	}
	for _, sub := range c.Commands() {
		out = append(out, flattenCommand(sub, path)...)
	}
	return out
}
