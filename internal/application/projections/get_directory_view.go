package projections

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"centerdir/internal/adapters/storage/program"
	"centerdir/internal/application/uistate"
	domainCenter "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
	domainProgram "centerdir/internal/domain/program"
)

// ViewQuery carries the user's current filter inputs.
type ViewQuery struct {
	Search   string
	CenterID string
	Lang     locale.Lang
}

// Active reports whether a search or center filter is applied.
func (q ViewQuery) Active() bool {
	return strings.TrimSpace(q.Search) != "" || q.CenterID != ""
}

// Group is one center with the programs shown beneath it.
type Group struct {
	Center   domainCenter.Center
	Programs []domainProgram.Program
	Expanded bool
}

// Summary counts what the view renders.
type Summary struct {
	Centers  int
	Programs int
}

// String formats the summary line.
func (s Summary) String() string {
	return fmt.Sprintf("Showing %d center(s), %d program(s)", s.Centers, s.Programs)
}

// DirectoryView is the grouped, filtered view model.
type DirectoryView struct {
	Query   ViewQuery
	Groups  []Group
	Summary Summary
	// Centers is the full center list in name order, for the selector and expand-all.
	Centers []domainCenter.Center
}

// AnyCollapsed reports whether at least one rendered group is collapsed.
func (v DirectoryView) AnyCollapsed() bool {
	return lo.SomeBy(v.Groups, func(g Group) bool { return !g.Expanded })
}

// AllCenterIDs returns every center id in the unfiltered list.
func (v DirectoryView) AllCenterIDs() []string {
	return lo.Map(v.Centers, func(c domainCenter.Center, _ int) string { return c.ID })
}

// nameSorter orders records by display name using the language's collation.
type nameSorter struct {
	col  *collate.Collator
	lang locale.Lang
}

func newNameSorter(lang locale.Lang) nameSorter {
	tag := language.English
	if lang == locale.Arabic {
		tag = language.Arabic
	}
	return nameSorter{col: collate.New(tag), lang: lang}
}

func (s nameSorter) centers(cs []domainCenter.Center) []domainCenter.Center {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, func(a, b domainCenter.Center) int {
		return s.col.CompareString(a.Name(s.lang), b.Name(s.lang))
	})
	return out
}

func (s nameSorter) programs(ps []domainProgram.Program) []domainProgram.Program {
	out := slices.Clone(ps)
	slices.SortStableFunc(out, func(a, b domainProgram.Program) int {
		return s.col.CompareString(a.Name(s.lang), b.Name(s.lang))
	})
	return out
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func centerMatches(c domainCenter.Center, needle string) bool {
	return containsAny(needle, c.NameEn, c.NameAr, c.Code)
}

func programMatches(p domainProgram.Program, needle string) bool {
	return containsAny(needle, p.NameEn, p.NameAr, p.Code, p.Description, p.CreatedBy)
}

// BuildDirectoryView filters and groups programs under their centers.
// PRE: none; nil slices and blank fields are allowed
// POST: groups follow center name order, programs within a group follow
// program name order; programs whose center is unknown are dropped
// INVARIANT: pure; the same inputs always yield the same view
func BuildDirectoryView(centers []domainCenter.Center, programs []domainProgram.Program, q ViewQuery, expanded uistate.Set) DirectoryView {
	sorter := newNameSorter(q.Lang)
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	byCenter := lo.GroupBy(programs, func(p domainProgram.Program) string { return p.CenterID })

	view := DirectoryView{Query: q, Centers: sorter.centers(centers)}
	for _, c := range view.Centers {
		if q.CenterID != "" && c.ID != q.CenterID {
			continue
		}

		own := byCenter[c.ID]
		matched := own
		selfMatch := needle != "" && centerMatches(c, needle)
		if needle != "" && !selfMatch {
			matched = lo.Filter(own, func(p domainProgram.Program, _ int) bool {
				return programMatches(p, needle)
			})
			if len(matched) == 0 {
				continue
			}
		}

		view.Groups = append(view.Groups, Group{
			Center:   c,
			Programs: sorter.programs(matched),
			Expanded: expanded.Has(c.ID) || needle != "" || q.CenterID != "",
		})
		view.Summary.Centers++
		view.Summary.Programs += len(matched)
	}
	return view
}

// GetDirectoryViewDeps holds dependencies for QueryGetDirectoryView.
type GetDirectoryViewDeps struct {
	CenterStore  CenterStore
	ProgramStore ProgramStore
}

// GetDirectoryViewResult carries the view and the time the data was read.
type GetDirectoryViewResult struct {
	View     DirectoryView
	LoadedAt time.Time
}

// QueryGetDirectoryView loads centers and programs concurrently and builds the view.
// PRE: deps stores are non-nil
// POST: Returns the view, the first load failure as DataUnavailable, or
// NotFound when q.CenterID names no loaded center
func QueryGetDirectoryView(ctx context.Context, q ViewQuery, expanded uistate.Set, deps GetDirectoryViewDeps) (GetDirectoryViewResult, error) {
	var (
		centers  []domainCenter.Center
		programs []domainProgram.Program
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		centers, err = deps.CenterStore.List(gctx)
		return directory.Unavailable("list centers", err)
	})
	g.Go(func() error {
		var err error
		programs, err = deps.ProgramStore.List(gctx, program.ListFilter{})
		return directory.Unavailable("list programs", err)
	})
	if err := g.Wait(); err != nil {
		return GetDirectoryViewResult{}, err
	}
	if q.CenterID != "" && !slices.ContainsFunc(centers, func(c domainCenter.Center) bool { return c.ID == q.CenterID }) {
		return GetDirectoryViewResult{}, &directory.NotFoundError{Kind: "center", ID: q.CenterID}
	}

	return GetDirectoryViewResult{
		View:     BuildDirectoryView(centers, programs, q, expanded),
		LoadedAt: time.Now(),
	}, nil
}
