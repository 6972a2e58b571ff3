// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Command hal-stats prints information about an alignment snapshot: its genome
tree, per-genome sizes and sequences, and the DNA of a genome as FASTA.

  hal-stats genomes in.hal
  hal-stats root in.hal
  hal-stats children in.hal Anc0
  hal-stats checksum in.hal human
  hal-stats fasta -index out.fa.fai in.hal human out.fa
*/
package main

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/ksenia-krasheninnikova/hal/alignment"
	"v.io/x/lib/cmdline"
)

// newQueryCmd creates a subcommand that takes a snapshot path followed by
// nArgs arguments.
func newQueryCmd(name, short, argsName string, nArgs int, fn func(env *cmdline.Env, aln *alignment.Alignment, args []string) error) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     name,
		Short:    short,
		ArgsName: strings.TrimSpace("halFile " + argsName),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != nArgs+1 {
			return fmt.Errorf("%s takes %d arguments, but got %v", name, nArgs+1, argv)
		}
		return withAlignment(vcontext.Background(), argv[0], func(aln *alignment.Alignment) error {
			return fn(env, aln, argv[1:])
		})
	})
	return cmd
}

func newCmdGenomes() *cmdline.Command {
	return newQueryCmd("genomes", "Print the size of every genome", "", 0,
		func(env *cmdline.Env, aln *alignment.Alignment, _ []string) error {
			return printGenomes(env.Stdout, aln)
		})
}

func newCmdRootName() *cmdline.Command {
	return newQueryCmd("root", "Print the name of the root genome", "", 0,
		func(env *cmdline.Env, aln *alignment.Alignment, _ []string) error {
			return printLine(env.Stdout, aln.RootName())
		})
}

func newCmdParent() *cmdline.Command {
	return newQueryCmd("parent", "Print the parent of a genome", "genome", 1,
		func(env *cmdline.Env, aln *alignment.Alignment, args []string) error {
			parent, err := aln.ParentName(args[0])
			if err != nil {
				return err
			}
			return printLine(env.Stdout, parent)
		})
}

func newCmdChildren() *cmdline.Command {
	return newQueryCmd("children", "Print the children of a genome", "genome", 1,
		func(env *cmdline.Env, aln *alignment.Alignment, args []string) error {
			children, err := aln.ChildNames(args[0])
			if err != nil {
				return err
			}
			return printLine(env.Stdout, strings.Join(children, " "))
		})
}

func newCmdSequences() *cmdline.Command {
	return newQueryCmd("sequences", "Print the sequences of a genome", "genome", 1,
		func(env *cmdline.Env, aln *alignment.Alignment, args []string) error {
			return printSequences(env.Stdout, aln, args[0])
		})
}

func newCmdTree() *cmdline.Command {
	return newQueryCmd("tree", "Print the genome tree in Newick format", "", 0,
		func(env *cmdline.Env, aln *alignment.Alignment, _ []string) error {
			for _, root := range aln.RootNames() {
				s, err := newick(aln, root)
				if err != nil {
					return err
				}
				if err := printLine(env.Stdout, s); err != nil {
					return err
				}
			}
			return nil
		})
}

func newCmdValidate() *cmdline.Command {
	return newQueryCmd("validate", "Check segment tiling, links and paralogy rings", "", 0,
		func(env *cmdline.Env, aln *alignment.Alignment, _ []string) error {
			if err := aln.Validate(); err != nil {
				return err
			}
			return printLine(env.Stdout, "ok")
		})
}

func newCmdChecksum() *cmdline.Command {
	return newQueryCmd("checksum", "Print a checksum of the DNA of each sequence of a genome", "genome", 1,
		func(env *cmdline.Env, aln *alignment.Alignment, args []string) error {
			return printChecksums(env.Stdout, aln, args[0])
		})
}

func newCmdFasta() *cmdline.Command {
	var (
		indexPath string
		lineWidth int
	)
	cmd := newQueryCmd("fasta", "Write the DNA of a genome as FASTA", "genome outPath", 2,
		func(env *cmdline.Env, aln *alignment.Alignment, args []string) error {
			return writeFasta(vcontext.Background(), aln, args[0], args[1], indexPath, lineWidth)
		})
	cmd.Flags.StringVar(&indexPath, "index", "", "If set, also write a samtools faidx index to this path")
	cmd.Flags.IntVar(&lineWidth, "line-width", 80, "Bases per FASTA line")
	return cmd
}

func newCmdHalStats() *cmdline.Command {
	return &cmdline.Command{
		Name:     "hal-stats",
		Short:    "Print information about an alignment snapshot",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdGenomes(),
			newCmdRootName(),
			newCmdParent(),
			newCmdChildren(),
			newCmdSequences(),
			newCmdTree(),
			newCmdValidate(),
			newCmdChecksum(),
			newCmdFasta(),
		},
	}
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdHalStats())
}
