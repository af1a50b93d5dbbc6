// Package manifest decodes library declarations from HCL files.
//
// A manifest lists libraries with their script namespace, direct
// dependencies and optional binding sources:
//
//	library "fileResolver" {
//	  namespace = "vfx.FileResolver"
//	  requires  = ["ar", "arch", "js", "tf", "vt"]
//	  script    = "scripts/fileResolver.js"
//	}
//
// Expressions may reference caller-supplied variables as var.<name> and call
// the string functions upper, lower, format and join.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/wippyai/script-loader/errors"
	"github.com/wippyai/script-loader/registry"
)

// File is a decoded manifest.
type File struct {
	Libraries []Library `hcl:"library,block"`
}

// Library is one library block.
type Library struct {
	Name      string   `hcl:"name,label"`
	Namespace string   `hcl:"namespace"`
	Requires  []string `hcl:"requires,optional"`
	Script    string   `hcl:"script,optional"`
	Wasm      string   `hcl:"wasm,optional"`
}

// Parse decodes manifest source. filename is used in diagnostics only.
func Parse(filename string, src []byte, vars map[string]string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.New(errors.PhaseManifest, errors.KindInvalidInput).
			Cause(diags).
			Detail("parse %s", filename).
			Build()
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(vars), &f)
	if diags.HasErrors() {
		return nil, errors.New(errors.PhaseManifest, errors.KindInvalidInput).
			Cause(diags).
			Detail("decode %s", filename).
			Build()
	}

	for _, lib := range f.Libraries {
		if lib.Script != "" && lib.Wasm != "" {
			return nil, errors.New(errors.PhaseManifest, errors.KindInvalidInput).
				Name(lib.Name).
				Detail("%s: script and wasm are mutually exclusive", filename).
				Build()
		}
	}
	return &f, nil
}

// Load reads and decodes a manifest file. Relative script and wasm paths are
// resolved against the manifest's directory.
func Load(path string, vars map[string]string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}
	f, err := Parse(path, src, vars)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i := range f.Libraries {
		lib := &f.Libraries[i]
		lib.Script = resolvePath(dir, lib.Script)
		lib.Wasm = resolvePath(dir, lib.Wasm)
	}
	return f, nil
}

// Declarations returns the manifest's libraries as declarations, in file order.
func (f *File) Declarations() *registry.Declarations {
	d := &registry.Declarations{}
	for _, lib := range f.Libraries {
		d.Declare(lib.Name, lib.Namespace, lib.Requires...)
	}
	return d
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func evalContext(vars map[string]string) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": cty.ObjectVal(values),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}
