// Package fixture loads TOML descriptions of function bodies for the
// analyzer CLI and for tests. Statements, terminators and places are written
// in a compact textual form close to the dump format.
package fixture

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// File mirrors the TOML schema.
type File struct {
	Name    string       `toml:"name"`
	Structs []StructDecl `toml:"structs"`
	Enums   []EnumDecl   `toml:"enums"`
	Locals  []LocalDecl  `toml:"locals"`
	Blocks  []BlockDecl  `toml:"blocks"`
}

type StructDecl struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type EnumDecl struct {
	Name       string        `toml:"name"`
	Nontrivial bool          `toml:"nontrivial"`
	Variants   []VariantDecl `toml:"variants"`
}

type VariantDecl struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type LocalDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Arg  bool   `toml:"arg"`
}

type BlockDecl struct {
	Stmts []string `toml:"stmts"`
	Term  string   `toml:"term"`
}

// Load reads and decodes a fixture file.
func Load(path string) (*mir.Body, *types.Interner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	body, in, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return body, in, nil
}

// Decode builds a body and its type interner from TOML data.
func Decode(data []byte) (*mir.Body, *types.Interner, error) {
	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	in := types.NewInterner()
	named := make(map[string]types.TypeID)

	// Register nominal type names first so fields may reference each other.
	for _, sd := range file.Structs {
		if _, dup := named[sd.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate type name %q", sd.Name)
		}
		named[sd.Name] = in.RegisterStruct(sd.Name)
	}
	for _, ed := range file.Enums {
		if _, dup := named[ed.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate type name %q", ed.Name)
		}
		id := in.RegisterEnum(ed.Name)
		in.SetEnumNontrivialRepr(id, ed.Nontrivial)
		named[ed.Name] = id
	}
	for _, sd := range file.Structs {
		fields := make([]types.StructField, 0, len(sd.Fields))
		for i, expr := range sd.Fields {
			ty, err := parseType(expr, in, named)
			if err != nil {
				return nil, nil, fmt.Errorf("struct %s field %d: %w", sd.Name, i, err)
			}
			fields = append(fields, types.StructField{Name: fmt.Sprintf("f%d", i), Type: ty})
		}
		in.SetStructFields(named[sd.Name], fields)
	}
	for _, ed := range file.Enums {
		variants := make([]types.EnumVariantInfo, 0, len(ed.Variants))
		for _, vd := range ed.Variants {
			fields := make([]types.TypeID, 0, len(vd.Fields))
			for i, expr := range vd.Fields {
				ty, err := parseType(expr, in, named)
				if err != nil {
					return nil, nil, fmt.Errorf("enum %s variant %s field %d: %w", ed.Name, vd.Name, i, err)
				}
				fields = append(fields, ty)
			}
			variants = append(variants, types.EnumVariantInfo{Name: vd.Name, Fields: fields})
		}
		in.SetEnumVariants(named[ed.Name], variants)
	}

	body := &mir.Body{Name: file.Name}
	locals := make(map[string]mir.LocalID, len(file.Locals))
	for i, ld := range file.Locals {
		if ld.Name == "" {
			return nil, nil, fmt.Errorf("local %d: missing name", i)
		}
		if _, dup := locals[ld.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate local %q", ld.Name)
		}
		ty, err := parseType(ld.Type, in, named)
		if err != nil {
			return nil, nil, fmt.Errorf("local %s: %w", ld.Name, err)
		}
		locals[ld.Name] = mir.LocalID(int32(i)) //nolint:gosec // bounded by fixture size
		body.Locals = append(body.Locals, mir.Local{Name: ld.Name, Type: ty, IsArg: ld.Arg})
	}

	for i, bd := range file.Blocks {
		block := mir.Block{ID: mir.BlockID(int32(i))} //nolint:gosec // bounded by fixture size
		for j, src := range bd.Stmts {
			stmt, err := parseStatement(src, locals)
			if err != nil {
				return nil, nil, fmt.Errorf("bb%d stmt %d: %w", i, j, err)
			}
			block.Stmts = append(block.Stmts, stmt)
		}
		term, err := parseTerminator(bd.Term, locals)
		if err != nil {
			return nil, nil, fmt.Errorf("bb%d terminator: %w", i, err)
		}
		block.Term = term
		body.Blocks = append(body.Blocks, block)
	}

	return body, in, nil
}
