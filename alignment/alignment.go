// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/errors"
	"github.com/ksenia-krasheninnikova/hal/store"
)

// ArrayKind names one of the three arrays of a genome.
type ArrayKind int

const (
	// DNAArray holds one byte per base.
	DNAArray ArrayKind = iota
	// TopArray holds the top segments.
	TopArray
	// BottomArray holds the bottom segments.
	BottomArray
)

func (k ArrayKind) String() string {
	switch k {
	case DNAArray:
		return "dna"
	case TopArray:
		return "top"
	case BottomArray:
		return "bottom"
	}
	return fmt.Sprintf("ArrayKind(%d)", int(k))
}

// Opts configures an Alignment.
type Opts struct {
	// NewBacking creates the store for one array of a genome.  It defaults to
	// an in-memory store.
	NewBacking func(genome string, kind ArrayKind) (store.Backing, error)
	// WindowRecords is the number of records cached per array.  Zero means
	// store.DefaultWindowRecords.
	WindowRecords int
}

// Alignment is a forest of genomes keyed by unique name.
//
// An Alignment is not safe for concurrent mutation.  Once populated, any
// number of goroutines may read it.
type Alignment struct {
	opts    Opts
	genomes map[string]*Genome
	// names lists genomes in the order they were added; parents always
	// precede their children.
	names []string
}

// New creates an empty alignment.
func New(opts Opts) *Alignment {
	if opts.NewBacking == nil {
		opts.NewBacking = func(string, ArrayKind) (store.Backing, error) {
			return store.NewMemory(), nil
		}
	}
	return &Alignment{opts: opts, genomes: make(map[string]*Genome)}
}

func (a *Alignment) addGenome(name, parentName string, branchLength float64) (*Genome, error) {
	if name == "" {
		return nil, errors.E(errors.Invalid, "alignment: empty genome name")
	}
	if _, ok := a.genomes[name]; ok {
		return nil, errors.E(errors.Exists, fmt.Sprintf("alignment: genome %s already exists", name))
	}
	g := &Genome{aln: a, name: name, parentName: parentName, branchLength: branchLength}
	if err := g.SetDimensions(nil); err != nil {
		return nil, err
	}
	a.genomes[name] = g
	a.names = append(a.names, name)
	return g, nil
}

// AddRootGenome adds a genome without a parent.
func (a *Alignment) AddRootGenome(name string) (*Genome, error) {
	return a.addGenome(name, "", 0)
}

// AddLeafGenome adds a genome as the last child of parentName.  Children
// must be added before the parent's bottom segments are dimensioned, since
// every bottom segment carries one slot per child.
func (a *Alignment) AddLeafGenome(name, parentName string, branchLength float64) (*Genome, error) {
	parent, err := a.OpenGenome(parentName)
	if err != nil {
		return nil, err
	}
	if parent.NumBottomSegments() > 0 {
		return nil, errors.E(errors.Precondition, fmt.Sprintf(
			"alignment: cannot add child %s to %s after its bottom segments were dimensioned", name, parentName))
	}
	g, err := a.addGenome(name, parentName, branchLength)
	if err != nil {
		return nil, err
	}
	parent.childNames = append(parent.childNames, name)
	if err := parent.resizeChildSlots(len(parent.childNames)); err != nil {
		return nil, err
	}
	return g, nil
}

// OpenGenome returns the named genome.  Unknown names yield an
// errors.NotExist error, with the closest known name as a hint.
func (a *Alignment) OpenGenome(name string) (*Genome, error) {
	if g, ok := a.genomes[name]; ok {
		return g, nil
	}
	msg := fmt.Sprintf("genome %s not found in alignment", name)
	best, bestDist := "", -1
	for _, n := range a.names {
		if d := matchr.Levenshtein(name, n); bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}
	if best != "" && bestDist <= 2+len(name)/4 {
		msg += fmt.Sprintf(" (did you mean %s?)", best)
	}
	return nil, errors.E(errors.NotExist, msg)
}

// Contains reports whether g belongs to this alignment.
func (a *Alignment) Contains(g *Genome) bool {
	return g != nil && a.genomes[g.name] == g
}

// NumGenomes returns the number of genomes.
func (a *Alignment) NumGenomes() int { return len(a.names) }

// GenomeNames returns every genome name, parents before children.
func (a *Alignment) GenomeNames() []string {
	return append([]string(nil), a.names...)
}

// RootNames returns the names of the roots of the forest.
func (a *Alignment) RootNames() []string {
	var roots []string
	for _, n := range a.names {
		if a.genomes[n].parentName == "" {
			roots = append(roots, n)
		}
	}
	return roots
}

// RootName returns the name of the first root, or "" for an empty alignment.
func (a *Alignment) RootName() string {
	if roots := a.RootNames(); len(roots) > 0 {
		return roots[0]
	}
	return ""
}

// ParentName returns the parent of the named genome ("" for a root).
func (a *Alignment) ParentName(name string) (string, error) {
	g, err := a.OpenGenome(name)
	if err != nil {
		return "", err
	}
	return g.parentName, nil
}

// ChildNames returns the children of the named genome.
func (a *Alignment) ChildNames(name string) ([]string, error) {
	g, err := a.OpenGenome(name)
	if err != nil {
		return nil, err
	}
	return g.ChildNames(), nil
}

// BranchLength returns the length of the branch between parent and child.
func (a *Alignment) BranchLength(parent, child string) (float64, error) {
	g, err := a.OpenGenome(child)
	if err != nil {
		return 0, err
	}
	if g.parentName != parent {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("alignment: %s is not the parent of %s", parent, child))
	}
	return g.branchLength, nil
}

// Flush flushes every genome.
func (a *Alignment) Flush() error {
	var err error
	for _, n := range a.names {
		if e := a.genomes[n].Flush(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Close flushes every genome and releases its backing stores.  The alignment
// must not be used afterwards.
func (a *Alignment) Close() error {
	var err error
	for _, n := range a.names {
		if e := a.genomes[n].closeArrays(); e != nil && err == nil {
			err = e
		}
	}
	a.genomes = nil
	a.names = nil
	return err
}
