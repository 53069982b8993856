package view

import (
	"fmt"
	"io"
	"strings"
)

// WriteText prints v for a terminal: the type tabs with the active one
// marked, the lifecycle state, and the active document or a placeholder.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder
	for i, t := range v.AvailableTypes {
		if i > 0 {
			b.WriteString("  ")
		}
		if t.ID == v.ActiveType.ID {
			fmt.Fprintf(&b, "[%s]", t.Label)
		} else {
			b.WriteString(t.Label)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "State: %s\n", v.LifecycleState)

	if repo := v.Repository; repo != nil {
		fmt.Fprintf(&b, "Repository: %s", repo.FullName)
		if repo.Language != "" {
			fmt.Fprintf(&b, " (%s)", repo.Language)
		}
		if repo.DefaultBranch != "" {
			fmt.Fprintf(&b, " @ %s", repo.DefaultBranch)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.ActiveDocument == nil {
		fmt.Fprintf(&b, "No %s generated yet.\n", v.ActiveType.Label)
	} else {
		b.WriteString(v.ActiveDocument.Content)
		if !strings.HasSuffix(v.ActiveDocument.Content, "\n") {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
