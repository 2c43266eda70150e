package treesitter

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
)

// IndexOptions configures BuildIndex
type IndexOptions struct {
	// Base types that make a class a Behavior or a DataAsset when they
	// are not declared anywhere in the corpus
	BehaviorBases  []string
	DataAssetBases []string

	Workers int
	Logger  logrus.FieldLogger
}

// typeEntry merges every declaration sharing a full name (partial types)
type typeEntry struct {
	fullName string
	decls    []*TypeDecl
}

func (e *typeEntry) namespace() string {
	return e.decls[0].Namespace
}

func (e *typeEntry) classLike() bool {
	for _, d := range e.decls {
		if d.IsClassLike() {
			return true
		}
	}
	return false
}

func (e *typeEntry) bases() []string {
	var bases []string
	for _, d := range e.decls {
		bases = append(bases, d.Bases...)
	}
	return bases
}

// Index answers type questions about a C# corpus without reflection.
// It implements the classifier's TypeInfoProvider.
type Index struct {
	byFile     map[string][]*TypeDecl
	byName     map[string][]*typeEntry
	byFullName map[string]*typeEntry

	behaviorRoots map[string]bool
	dataRoots     map[string]bool

	Warnings []string
}

// BuildIndex parses every file and indexes its type declarations.
// Files that fail to parse are logged and indexed as empty.
func BuildIndex(ctx context.Context, files []models.SourceFile, opts IndexOptions) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	results := make([]*ParseResult, len(files))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			lp, err := NewLanguageParser()
			if err != nil {
				return errors.InternalErrorf("create parser: %v", err)
			}
			defer lp.Close()

			for i := range jobs {
				f := files[i]
				results[i] = lp.ParseSource(f.Path, []byte(strings.Join(f.Lines, "\n")))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := newIndex(opts)
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Error != nil {
			perr := errors.ParseErrorf(res.Error, "could not parse %s", res.FilePath)
			if !errors.IsRecoverable(perr) {
				return nil, perr
			}
			logger.WithError(res.Error).WithField("path", res.FilePath).Warn("Indexing file without declarations")
			idx.Warnings = append(idx.Warnings, perr.Error())
			continue
		}
		idx.Add(res)
	}
	idx.sortEntries()

	logger.WithFields(logrus.Fields{
		"files": len(files),
		"types": idx.Len(),
	}).Debug("Type index built")

	return idx, nil
}

func newIndex(opts IndexOptions) *Index {
	return &Index{
		byFile:        make(map[string][]*TypeDecl),
		byName:        make(map[string][]*typeEntry),
		byFullName:    make(map[string]*typeEntry),
		behaviorRoots: toSet(opts.BehaviorBases),
		dataRoots:     toSet(opts.DataAssetBases),
	}
}

// Add indexes the declarations of one parsed file
func (idx *Index) Add(res *ParseResult) {
	key := filepath.Clean(res.FilePath)
	for i := range res.Types {
		decl := &res.Types[i]
		if decl.Name == "" {
			continue
		}
		idx.byFile[key] = append(idx.byFile[key], decl)

		entry, ok := idx.byFullName[decl.FullName()]
		if !ok {
			entry = &typeEntry{fullName: decl.FullName()}
			idx.byFullName[entry.fullName] = entry
			idx.byName[decl.Name] = append(idx.byName[decl.Name], entry)
		}
		entry.decls = append(entry.decls, decl)
	}
}

func (idx *Index) sortEntries() {
	for _, entries := range idx.byName {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].fullName < entries[j].fullName
		})
	}
}

// Len returns the number of distinct types
func (idx *Index) Len() int {
	return len(idx.byFullName)
}

// ResolveType returns the top-level type in path whose name matches the
// file name, the way the editor binds a script file to its class
func (idx *Index) ResolveType(path string) (*models.TypeDescriptor, bool) {
	want := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for _, decl := range idx.byFile[filepath.Clean(path)] {
		if decl.Nested || decl.Name != want {
			continue
		}
		return &models.TypeDescriptor{
			Name:      decl.Name,
			Namespace: decl.Namespace,
			Keyword:   decl.Keyword,
			Path:      decl.FilePath,
			StartLine: decl.StartLine,
			EndLine:   decl.EndLine,
		}, true
	}
	return nil, false
}

// IsSubtypeOf reports whether t belongs to kind. Behavior and DataAsset
// follow the base chain through the corpus to a configured root type;
// PlainType means any class; every type is at least Unknown.
func (idx *Index) IsSubtypeOf(t *models.TypeDescriptor, kind models.Kind) bool {
	entry := idx.lookup(t)
	if entry == nil {
		return false
	}

	switch kind {
	case models.KindBehavior:
		return idx.reaches(entry, idx.behaviorRoots, map[string]bool{})
	case models.KindDataAsset:
		return idx.reaches(entry, idx.dataRoots, map[string]bool{})
	case models.KindPlainType:
		return entry.classLike()
	default:
		return true
	}
}

// DeclaresMethod reports whether t itself declares a non-static method
// called name. Partial declarations count; inherited and nested-type
// methods do not.
func (idx *Index) DeclaresMethod(t *models.TypeDescriptor, name string) bool {
	entry := idx.lookup(t)
	if entry == nil {
		return false
	}

	for _, decl := range entry.decls {
		for _, m := range decl.Methods {
			if m.Name == name && !m.Static {
				return true
			}
		}
	}
	return false
}

func (idx *Index) lookup(t *models.TypeDescriptor) *typeEntry {
	if t == nil {
		return nil
	}
	return idx.byFullName[t.FullName()]
}

// reaches walks the base chain of entry looking for a root type name
func (idx *Index) reaches(entry *typeEntry, roots map[string]bool, visited map[string]bool) bool {
	if visited[entry.fullName] {
		return false
	}
	visited[entry.fullName] = true

	for _, base := range entry.bases() {
		if roots[base] {
			return true
		}
		if next := idx.resolveBase(base, entry.namespace()); next != nil && idx.reaches(next, roots, visited) {
			return true
		}
	}
	return false
}

// resolveBase finds the corpus type a base name refers to, preferring
// a class in the referring type's namespace or an enclosing one
func (idx *Index) resolveBase(name, namespace string) *typeEntry {
	var fallback *typeEntry
	for _, entry := range idx.byName[name] {
		if !entry.classLike() {
			continue
		}
		ns := entry.namespace()
		if ns == namespace || ns == "" || strings.HasPrefix(namespace, ns+".") {
			return entry
		}
		if fallback == nil {
			fallback = entry
		}
	}
	return fallback
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}
