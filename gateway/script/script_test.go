package script

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/wippyai/script-loader/loader"
	"github.com/wippyai/script-loader/registry"
)

func TestImportNative(t *testing.T) {
	g := New()
	calls := 0
	err := g.RegisterNative("pxr.Tf", func(vm *goja.Runtime, module *goja.Object) {
		calls++
		exports := module.Get("exports").(*goja.Object)
		if err := exports.Set("name", "tf"); err != nil {
			panic(err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := g.Import(ctx, "pxr.Tf"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := g.Import(ctx, "pxr.Tf"); err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}

	v, ok := g.Exports("pxr.Tf")
	if !ok {
		t.Fatal("Exports did not find imported namespace")
	}
	if got := v.ToObject(nil).Get("name").String(); got != "tf" {
		t.Errorf("exports.name = %q, want tf", got)
	}
	if !g.Bound("pxr.Tf") || g.Bound("pxr.Vt") {
		t.Error("Bound reports wrong namespaces")
	}
}

func TestImportScript(t *testing.T) {
	g := New()
	src := []byte(`exports.greet = function(name) { return "hello " + name; };`)
	if err := g.RegisterScript("vfx.Greeter", src); err != nil {
		t.Fatal(err)
	}
	if err := g.Import(context.Background(), "vfx.Greeter"); err != nil {
		t.Fatal(err)
	}

	err := g.Do(func(vm *goja.Runtime) error {
		v, err := vm.RunString(`require("vfx.Greeter").greet("usd")`)
		if err != nil {
			return err
		}
		if v.String() != "hello usd" {
			t.Errorf("greet = %q, want %q", v.String(), "hello usd")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestImportErrors(t *testing.T) {
	g := New()
	ctx := context.Background()

	if err := g.Import(ctx, "not.bound"); err == nil {
		t.Error("expected error for unbound namespace")
	}

	if err := g.RegisterScript("vfx.Broken", []byte(`throw new Error("bindings unavailable");`)); err != nil {
		t.Fatal(err)
	}
	err := g.Import(ctx, "vfx.Broken")
	if err == nil || !strings.Contains(err.Error(), "bindings unavailable") {
		t.Errorf("err = %v, want script exception", err)
	}

	if err := g.RegisterScript("vfx.Syntax", []byte(`exports.x = ;`)); err == nil {
		t.Error("expected compile error")
	}
	if err := g.RegisterNative("bad..ns", nil); err == nil {
		t.Error("expected invalid namespace error")
	}
	if err := g.RegisterNative("pxr.Nil", nil); err == nil {
		t.Error("expected nil loader error")
	}
}

func TestImportRetryAfterThrow(t *testing.T) {
	g := New()
	src := []byte(`
if (typeof ready === "undefined") { throw new Error("not ready"); }
exports.value = 42;
`)
	if err := g.RegisterScript("vfx.Flaky", src); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := g.Import(ctx, "vfx.Flaky"); err == nil {
		t.Fatal("expected first import to fail")
	}
	if _, ok := g.Exports("vfx.Flaky"); ok {
		t.Fatal("failed import left exports behind")
	}

	if err := g.Do(func(vm *goja.Runtime) error {
		return vm.Set("ready", true)
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.Import(ctx, "vfx.Flaky"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	v, _ := g.Exports("vfx.Flaky")
	if got := v.ToObject(nil).Get("value").ToInteger(); got != 42 {
		t.Errorf("exports.value = %d, want 42", got)
	}
	if err := g.RegisterScript("vfx.Flaky", src); err == nil {
		t.Error("rebinding an imported namespace should fail")
	}
}

func TestImportNativePanic(t *testing.T) {
	g := New()
	err := g.RegisterNative("pxr.Bad", func(*goja.Runtime, *goja.Object) {
		panic(fmt.Errorf("native init failed"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterScript("pxr.Good", []byte(`exports.ok = true;`)); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	err = g.Import(ctx, "pxr.Bad")
	if err == nil || !strings.Contains(err.Error(), "native init failed") {
		t.Fatalf("err = %v, want native init failure", err)
	}
	if _, ok := g.Exports("pxr.Bad"); ok {
		t.Error("panicking loader left exports behind")
	}
	if !g.Bound("pxr.Bad") {
		t.Error("binding should survive a failed import")
	}

	if err := g.Import(ctx, "pxr.Bad"); err == nil {
		t.Error("expected second import to fail again")
	}
	if err := g.Import(ctx, "pxr.Good"); err != nil {
		t.Errorf("Import after panic: %v", err)
	}
}

func TestRequireBeforeImportFails(t *testing.T) {
	g := New()
	if err := g.RegisterScript("pxr.Base", []byte(`exports.id = "base";`)); err != nil {
		t.Fatal(err)
	}
	if err := g.RegisterScript("pxr.Top", []byte(`exports.base = require("pxr.Base").id;`)); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := g.Import(ctx, "pxr.Top"); err == nil {
		t.Fatal("expected require of unimported dependency to fail")
	}
	if err := g.Import(ctx, "pxr.Base"); err != nil {
		t.Fatal(err)
	}
	if err := g.Import(ctx, "pxr.Top"); err != nil {
		t.Fatalf("Import after dependency: %v", err)
	}
	v, _ := g.Exports("pxr.Top")
	if got := v.ToObject(nil).Get("base").String(); got != "base" {
		t.Errorf("exports.base = %q, want base", got)
	}
}

func TestImportCanceled(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Import(ctx, "pxr.Tf"); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoaderImportsScriptsInDependencyOrder(t *testing.T) {
	g := New()
	if err := g.Do(func(vm *goja.Runtime) error {
		_, err := vm.RunString(`var loaded = [];`)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	scripts := map[string]string{
		"pxr.Arch": `loaded.push("arch");`,
		"pxr.Tf":   `loaded.push("tf");`,
		"pxr.Ar":   `loaded.push("ar");`,
		// the resolver bindings read their dependencies' exports at import time
		"vfx.FileResolver": `loaded.push("fileResolver"); exports.ready = loaded.indexOf("ar") >= 0;`,
	}
	for ns, src := range scripts {
		if err := g.RegisterScript(ns, []byte(src)); err != nil {
			t.Fatal(err)
		}
	}

	reg := registry.New()
	var decls registry.Declarations
	decls.Declare("fileResolver", "vfx.FileResolver", "ar", "arch", "tf")
	decls.Declare("ar", "pxr.Ar", "tf")
	decls.Declare("tf", "pxr.Tf", "arch")
	decls.Declare("arch", "pxr.Arch")
	if err := decls.Apply(reg); err != nil {
		t.Fatal(err)
	}

	l := loader.NewWithDefaults(reg, g)
	if err := l.EnsureLoaded(context.Background(), "fileResolver"); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}

	err := g.Do(func(vm *goja.Runtime) error {
		v, err := vm.RunString(`loaded.join(",")`)
		if err != nil {
			return err
		}
		if want := "arch,tf,ar,fileResolver"; v.String() != want {
			t.Errorf("load order = %q, want %q", v.String(), want)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, ok := g.Exports("vfx.FileResolver")
	if !ok {
		t.Fatal("fileResolver was not imported")
	}
	if !v.ToObject(nil).Get("ready").ToBoolean() {
		t.Error("fileResolver bindings ran before ar")
	}
}
