package codegen

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"kiln/internal/ir"
)

// Result bundles the emitted sources with the debug side channel.
type Result struct {
	// Sources maps module names to their SystemVerilog text, one entry per
	// distinct generator name in the tree; external generators have no
	// entry.
	Sources map[string]string
	// Lines is the merged debug line mapping of every emitted generator
	// whose Debug flag was set.
	Lines LineInfo
}

// collectGenerators flattens the tree depth-first. Name collisions are
// resolved last-write-wins; unification of identical generators is a
// separate concern outside this pass.
func collectGenerators(top *ir.Generator) []*ir.Generator {
	index := make(map[string]int)
	var ordered []*ir.Generator
	var walk func(g *ir.Generator)
	walk = func(g *ir.Generator) {
		if i, ok := index[g.Name]; ok {
			ordered[i] = g
		} else {
			index[g.Name] = len(ordered)
			ordered = append(ordered, g)
		}
		for _, child := range g.Children() {
			walk(child)
		}
	}
	walk(top)
	return ordered
}

// Generate emits one source per distinct generator in the tree. External
// generators are skipped. Independent modules are emitted concurrently;
// the output is deterministic because each module's text depends only on
// its own generator.
func Generate(top *ir.Generator, opts Options) (*Result, error) {
	gens := collectGenerators(top)
	result := &Result{
		Sources: make(map[string]string, len(gens)),
		Lines:   make(LineInfo),
	}
	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(NumCPUs())
	for _, g := range gens {
		if g.External {
			continue
		}
		eg.Go(func() error {
			cg := New(g, opts)
			src, err := cg.Generate()
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			result.Sources[g.Name] = src
			for node, line := range cg.Lines() {
				result.Lines[node] = line
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateVerilog is the plain mapping form of Generate.
func GenerateVerilog(top *ir.Generator) (map[string]string, error) {
	res, err := Generate(top, Options{})
	if err != nil {
		return nil, err
	}
	return res.Sources, nil
}
