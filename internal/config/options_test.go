package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/reusee/dscope"
)

func TestLoader_Defaults(t *testing.T) {
	opts, err := NewLoader().Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(opts, Default()) {
		t.Fatalf("got %+v, want %+v", opts, Default())
	}
}

func TestLoader_Overrides(t *testing.T) {
	loader := NewLoaderFromString("test.cue", `
target: exit_syscall: 231
limits: max_depth: 4
calls: convention: "stack"
`)
	opts, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Target.ExitSyscall != 231 {
		t.Errorf("got exit syscall %d", opts.Target.ExitSyscall)
	}
	if opts.Limits.MaxDepth != 4 {
		t.Errorf("got max depth %d", opts.Limits.MaxDepth)
	}
	if opts.Calls.Convention != CallsStack {
		t.Errorf("got convention %q", opts.Calls.Convention)
	}
	if opts.Target.Entry != "_start" {
		t.Errorf("untouched fields must keep defaults, got entry %q", opts.Target.Entry)
	}
}

func TestLoader_Files(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.cue")
	second := filepath.Join(dir, "b.cue")
	if err := os.WriteFile(first, []byte(`target: entry: "main"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte(`naming: temp_prefix: "_t"`), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(first, second)
	opts, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Target.Entry != "main" || opts.Naming.TempPrefix != "_t" {
		t.Fatalf("got %+v", opts)
	}

	var entry string
	if err := loader.Lookup("target.entry", &entry); err != nil {
		t.Fatal(err)
	}
	if entry != "main" {
		t.Fatalf("got %q", entry)
	}
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		message string
	}{
		{name: "unknown field", src: `target: endian: "little"`},
		{name: "bad convention", src: `calls: convention: "registers"`},
		{name: "bad depth", src: `limits: max_depth: 0`},
		{name: "conflicting files", src: "target: bits: 64\ntarget: bits: 32"},
		{name: "short register list", src: `target: syscall_registers: ["rax", "rdi"]`},
		{name: "duplicate prefixes", src: `naming: temp_prefix: "str"`, message: "overlap"},
		{
			name:    "var prefix starts temp prefix",
			src:     `naming: var_prefix: "_t"`,
			message: `naming.var_prefix "_t" and naming.temp_prefix "_tmp" overlap`,
		},
		{
			name:    "end prefix starts proc prefix",
			src:     `naming: end_prefix: "_fn"`,
			message: `naming.proc_prefix "_fn_" and naming.end_prefix "_fn" overlap`,
		},
		{name: "entry starts with a prefix", src: `target: entry: "str_main"`, message: "target.entry"},
		{name: "syntax error", src: `target: {`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoaderFromString("bad.cue", tc.src).Load()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected error to mention %q, got %q", tc.message, err)
			}
		})
	}
}

func TestLoader_DistinctPrefixes(t *testing.T) {
	opts, err := NewLoaderFromString("test.cue", `naming: {
	var_prefix: "v_"
	temp_prefix: "t_"
	end_prefix: "e_"
}`).Load()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Naming.EndPrefix != "e_" {
		t.Fatalf("got %+v", opts.Naming)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.cue")).Load()
	if err == nil || !strings.Contains(err.Error(), "missing.cue") {
		t.Fatalf("got %v", err)
	}
}

func TestModule(t *testing.T) {
	dscope.New(new(Module)).Fork(
		dscope.Provide(NewLoaderFromString("test.cue", `target: word_size: 4`)),
	).Call(func(
		load Load,
	) {
		opts, err := load()
		if err != nil {
			t.Fatal(err)
		}
		if opts.Target.WordSize != 4 {
			t.Fatalf("got %d", opts.Target.WordSize)
		}
	})
}
