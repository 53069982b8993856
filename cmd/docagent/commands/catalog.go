package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/docagent/internal/catalog"
)

// CatalogCmd implements the 'catalog' command.
type CatalogCmd struct {
	JSON bool `help:"Print the catalog as JSON"`

	out io.Writer
}

func (c *CatalogCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.ListTypes())
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLABEL\tDESCRIPTION")
	for _, t := range cat.ListTypes() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Label, t.Description)
	}
	return tw.Flush()
}
