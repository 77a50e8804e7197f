// Package rosterctl implements a command line view of a roster stored in an
// SQLite slot file: listing, inspection, reordering, backup and search.
package rosterctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kittclouds/roster/internal/logging"
	"github.com/kittclouds/roster/internal/roster"
	"github.com/kittclouds/roster/internal/store"
	"github.com/kittclouds/roster/pkg/search"
)

// Run executes the configured command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := logging.New(errOut)

	slot, err := openSlot(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := slot.Close(); err != nil {
			logger.Printf("close slot: %v", err)
		}
	}()

	adapter := store.NewAdapter(slot, cfg.Key, logger)
	r := &runner{cfg: cfg, out: out, log: logger, adapter: adapter}
	r.roster = roster.New(adapter, logger)

	switch cfg.Command {
	case "list":
		if cfg.Watch {
			return r.watchList(ctx)
		}
		return r.list()
	case "show":
		return r.show(cfg.Args[0])
	case "move":
		return r.move(cfg.Args[0], cfg.Args[1])
	case "export":
		return r.export(cfg.Args)
	case "import":
		return r.importFile(cfg.Args[0])
	case "similar":
		return r.similar(cfg.Args[0])
	case "search":
		return r.search(strings.Join(cfg.Args, " "))
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}

type runner struct {
	cfg     Config
	out     io.Writer
	log     *log.Logger
	adapter *store.Adapter
	roster  *roster.Store
}

func (r *runner) list() error {
	return r.printList(r.roster.List())
}

func (r *runner) watchList(ctx context.Context) error {
	if err := r.list(); err != nil {
		return err
	}
	return watchFile(ctx, r.cfg.DBPath, r.log, func() {
		r.roster.Reload()
		fmt.Fprintln(r.out)
		if err := r.list(); err != nil {
			r.log.Printf("list: %v", err)
		}
	})
}

func (r *runner) show(id string) error {
	c, ok := r.roster.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if r.cfg.JSON {
		return r.writeJSON(c)
	}

	fmt.Fprintf(r.out, "%s (%s)\n", c.Name, c.ID)
	if c.Class != "" {
		fmt.Fprintf(r.out, "Class: %s\n", c.Class)
	}
	if c.ShortDescription != "" {
		fmt.Fprintf(r.out, "%s\n", c.ShortDescription)
	}
	fmt.Fprintf(r.out, "Image: %s\n", abbreviate(c.DisplayImage(), 72))
	if c.Stats.Len() > 0 {
		fmt.Fprintln(r.out, "Stats:")
		for name, v := range c.Stats.All() {
			fmt.Fprintf(r.out, "  %-14s %s\n", name, v)
		}
	}
	if c.Background != "" {
		fmt.Fprintf(r.out, "Background:\n%s\n", indent(c.Background))
	}
	if c.Story != "" {
		fmt.Fprintf(r.out, "Story:\n%s\n", indent(c.Story))
	}
	return nil
}

func (r *runner) move(activeID, overID string) error {
	for _, id := range []string{activeID, overID} {
		if !r.roster.Has(id) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
	}
	list, err := r.roster.Reorder(activeID, overID)
	if err != nil {
		return err
	}
	return r.printList(list)
}

func (r *runner) export(args []string) error {
	data, err := r.adapter.Export()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err = fmt.Fprintln(r.out, string(data))
		return err
	}
	if err := os.WriteFile(args[0], append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	r.log.Printf("exported %d characters to %s", r.roster.Len(), args[0])
	return nil
}

func (r *runner) importFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	n, err := r.adapter.Import(data)
	if err != nil {
		return err
	}
	r.roster.Reload()
	fmt.Fprintf(r.out, "imported %d characters\n", n)
	return nil
}

func (r *runner) similar(id string) error {
	if !r.roster.Has(id) {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	idx, err := store.NewStatIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	near, err := idx.Nearest(r.roster.List(), id, r.cfg.Limit)
	if err != nil {
		return err
	}
	if r.cfg.JSON {
		return r.writeJSON(near)
	}
	for _, n := range near {
		fmt.Fprintf(r.out, "%-24s %-16s %.2f\n", n.Name, n.ID, n.Distance)
	}
	return nil
}

func (r *runner) search(query string) error {
	all := r.roster.List()
	idx, err := search.New(all)
	if err != nil {
		return err
	}
	ids, err := idx.Filter(query)
	if err != nil {
		return err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var hits []*store.Character
	for _, c := range all {
		if want[c.ID] {
			hits = append(hits, c)
		}
	}
	return r.printList(hits)
}

func (r *runner) printList(list []*store.Character) error {
	if r.cfg.JSON {
		if list == nil {
			list = []*store.Character{}
		}
		return r.writeJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No characters.")
		return nil
	}
	for i, c := range list {
		line := fmt.Sprintf("%2d. %s", i+1, c.Name)
		if c.Class != "" {
			line += " (" + c.Class + ")"
		}
		fmt.Fprintf(r.out, "%-40s %s\n", line, c.ID)
	}
	return nil
}

func (r *runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openSlot(path string) (*store.SQLiteSlot, error) {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	slot, err := store.NewSQLiteSlotWithDSN(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite slot: %w", err)
	}
	return slot, nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
