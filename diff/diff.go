package diff

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/wippyai/typegraph/errors"
	"github.com/wippyai/typegraph/types"
)

// Change is a type present under the same name on both sides whose
// structure differs.
type Change struct {
	Old      types.Type
	New      types.Type
	Mismatch *types.Mismatch
	Name     string
}

// Report lists the outcome of comparing two repositories by type name.
// Every slice is sorted by name.
type Report struct {
	Added     []types.Type
	Removed   []types.Type
	Changed   []Change
	Unchanged []string
}

// Empty reports whether the two sides were structurally identical.
func (r *Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Compare matches the types of before and after by name and compares each pair
// structurally. When several types share a name, the first inserted one is
// compared.
func Compare(before, after *types.Repository) (*Report, error) {
	if before == nil || after == nil {
		return nil, errors.InvalidInput(errors.PhaseDiff, "nil repository")
	}

	cmp := types.NewComparer()
	oldNames := set.From(before.Names())
	newNames := set.From(after.Names())

	r := &Report{}
	for _, name := range sorted(oldNames) {
		o, err := before.First(name)
		if err != nil {
			return nil, err
		}
		if !newNames.Contains(name) {
			r.Removed = append(r.Removed, o)
			continue
		}
		n, err := after.First(name)
		if err != nil {
			return nil, err
		}
		if cmp.Equal(o, n) {
			r.Unchanged = append(r.Unchanged, name)
			continue
		}
		r.Changed = append(r.Changed, Change{
			Name:     name,
			Old:      o,
			New:      n,
			Mismatch: types.Diff(o, n),
		})
	}
	for _, name := range sorted(newNames) {
		if oldNames.Contains(name) {
			continue
		}
		n, err := after.First(name)
		if err != nil {
			return nil, err
		}
		r.Added = append(r.Added, n)
	}

	Logger().Debug("compared repositories",
		zap.Int("added", len(r.Added)),
		zap.Int("removed", len(r.Removed)),
		zap.Int("changed", len(r.Changed)))
	return r, nil
}

func sorted(s *set.Set[string]) []string {
	names := s.Slice()
	slices.Sort(names)
	return names
}

// Write renders the report, one line per added, removed or changed type,
// followed by a summary line.
func (r *Report) Write(w io.Writer) error {
	style := newStyles(w)

	for _, t := range r.Added {
		if _, err := fmt.Fprintln(w, style.added.Render("+ "+t.String())); err != nil {
			return err
		}
	}
	for _, t := range r.Removed {
		if _, err := fmt.Fprintln(w, style.removed.Render("- "+t.String())); err != nil {
			return err
		}
	}
	for _, c := range r.Changed {
		line := style.changed.Render("~ "+c.Name) + " " + style.detail.Render(c.Mismatch.String())
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, style.summary.Render(fmt.Sprintf(
		"%d added, %d removed, %d changed, %d unchanged",
		len(r.Added), len(r.Removed), len(r.Changed), len(r.Unchanged))))
	return err
}

type styles struct {
	added, removed, changed, detail, summary lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		added:   re.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		removed: re.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		changed: re.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		detail:  re.NewStyle().Foreground(lipgloss.Color("#666666")),
		summary: re.NewStyle().Bold(true),
	}
}
