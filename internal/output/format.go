// Package output formats tasks for the non-interactive commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nibzard/retrotodo/internal/todo"
)

// EmptyMessage is printed by WriteList for an empty list.
const EmptyMessage = "No tasks yet. Add your first one!"

// WriteList prints one "ID  TEXT" row per task. Placeholder ids are marked.
func WriteList(w io.Writer, tasks todo.List) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\n", displayID(t), normalizeText(t.Text))
	}
	return tw.Flush()
}

// WriteTask prints a single task row, as used after add.
func WriteTask(w io.Writer, t todo.Task) error {
	_, err := fmt.Fprintf(w, "%s  %s\n", displayID(t), normalizeText(t.Text))
	return err
}

// WriteJSON prints tasks as an indented JSON array. A nil list prints [].
func WriteJSON(w io.Writer, tasks todo.List) error {
	if tasks == nil {
		tasks = todo.List{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func displayID(t todo.Task) string {
	if t.Placeholder {
		return "(no id)"
	}
	return t.ID
}

// normalizeText flattens newlines and names empty tasks "(untitled)".
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
