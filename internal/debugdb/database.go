package debugdb

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"kiln/internal/ir"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 2

// BreakPoint ties an emitted statement to its output line.
type BreakPoint struct {
	Handle string
	Line   int
}

// VariableEntry maps a generated signal back to its source-level name.
type VariableEntry struct {
	Handle string
	Name   string
	Source string
}

// Connection records one port binding of a module instantiation.
type Connection struct {
	From string
	To   string
}

// HierarchyEntry records one parent/child edge of the generator tree.
type HierarchyEntry struct {
	Parent string
	Child  string
}

// Payload is the serialized debug database.
type Payload struct {
	// Schema version for safe invalidation when the format changes
	Schema uint16

	TopName string

	BreakPoints []BreakPoint
	Variables   []VariableEntry
	Connections []Connection
	Hierarchy   []HierarchyEntry
}

// Database accumulates debug information produced alongside emission and
// persists it for external debuggers. Thread-safe for concurrent feeds.
type Database struct {
	mu      sync.Mutex
	topName string

	breakPoints []BreakPoint
	variables   []VariableEntry
	connections []Connection
	hierarchy   []HierarchyEntry
}

// NewDatabase returns an empty database for the named top module.
func NewDatabase(topName string) *Database {
	if topName == "" {
		topName = "TOP"
	}
	return &Database{topName: topName}
}

// SetBreakPoints ingests the emission line mapping; only statement nodes
// become break points.
func (d *Database) SetBreakPoints(lines map[ir.Node]int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for node, line := range lines {
		stmt, ok := node.(*ir.Stmt)
		if !ok {
			continue
		}
		handle := ""
		if gen := stmt.GeneratorParent(); gen != nil {
			handle = gen.HandleName()
		}
		d.breakPoints = append(d.breakPoints, BreakPoint{Handle: handle, Line: line})
	}
	sort.Slice(d.breakPoints, func(i, j int) bool {
		if d.breakPoints[i].Handle != d.breakPoints[j].Handle {
			return d.breakPoints[i].Handle < d.breakPoints[j].Handle
		}
		return d.breakPoints[i].Line < d.breakPoints[j].Line
	})
}

// SetVariableMapping records source-level names for generated signals, one
// inner map per generator.
func (d *Database) SetVariableMapping(mapping map[*ir.Generator]map[string]*ir.Var) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for gen, vars := range mapping {
		handle := gen.HandleName()
		for source, v := range vars {
			d.variables = append(d.variables, VariableEntry{
				Handle: handle,
				Name:   v.String(),
				Source: source,
			})
		}
	}
	sort.Slice(d.variables, func(i, j int) bool {
		if d.variables[i].Handle != d.variables[j].Handle {
			return d.variables[i].Handle < d.variables[j].Handle
		}
		return d.variables[i].Source < d.variables[j].Source
	})
}

// CollectStructure walks the tree and records the instantiation
// connections and the module hierarchy.
func (d *Database) CollectStructure(top *ir.Generator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collect(top)
	sort.Slice(d.connections, func(i, j int) bool {
		if d.connections[i].From != d.connections[j].From {
			return d.connections[i].From < d.connections[j].From
		}
		return d.connections[i].To < d.connections[j].To
	})
}

func (d *Database) collect(g *ir.Generator) {
	for _, stmt := range g.Stmts() {
		if stmt.Kind != ir.StmtModuleInstantiation {
			continue
		}
		child := stmt.Inst.Target
		for internal, external := range stmt.Inst.PortMapping {
			d.connections = append(d.connections, Connection{
				From: external.HandleName(),
				To:   child.HandleName() + "." + internal.Name,
			})
		}
	}
	for _, child := range g.Children() {
		d.hierarchy = append(d.hierarchy, HierarchyEntry{
			Parent: g.HandleName(),
			Child:  child.HandleName(),
		})
		d.collect(child)
	}
}

// Save serializes the database to filename. The write is atomic: a temp
// file in the target directory is renamed over the destination.
func (d *Database) Save(filename string) error {
	d.mu.Lock()
	payload := &Payload{
		Schema:      schemaVersion,
		TopName:     d.topName,
		BreakPoints: d.breakPoints,
		Variables:   d.variables,
		Connections: d.connections,
		Hierarchy:   d.hierarchy,
	}
	d.mu.Unlock()

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		os.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filename)
}

// Load reads a payload from filename. Returns false without error when the
// file does not exist, and rejects unknown schema versions.
func Load(filename string, out *Payload) (bool, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, errors.New("debugdb: unknown schema version")
	}
	return true, nil
}
