package config

import (
	"fmt"
	"strings"

	"github.com/reusee/dscope"
)

const (
	CallsNone  = "none"
	CallsStack = "stack"
)

// MaxSyscallArgs is the number of argument registers of the Linux syscall
// ABI. The syscall number takes one more register.
const MaxSyscallArgs = 6

type Options struct {
	Target Target `json:"target"`
	Naming Naming `json:"naming"`
	Limits Limits `json:"limits"`
	Calls  Calls  `json:"calls"`
}

type Target struct {
	Bits             int      `json:"bits"`
	Entry            string   `json:"entry"`
	ExitSyscall      int64    `json:"exit_syscall"`
	SyscallRegisters []string `json:"syscall_registers"`
	WordSize         int      `json:"word_size"`
}

type Naming struct {
	StringPrefix string `json:"string_prefix"`
	VarPrefix    string `json:"var_prefix"`
	ProcPrefix   string `json:"proc_prefix"`
	ReturnPrefix string `json:"return_prefix"`
	TempPrefix   string `json:"temp_prefix"`
	EndPrefix    string `json:"end_prefix"`
}

type Limits struct {
	MaxDepth int `json:"max_depth"`
}

type Calls struct {
	Convention string `json:"convention"`
}

// Default returns the options the schema defaults to.
func Default() Options {
	return Options{
		Target: Target{
			Bits:             64,
			Entry:            "_start",
			ExitSyscall:      60,
			SyscallRegisters: []string{"rax", "rdi", "rsi", "rdx", "r10", "r8", "r9"},
			WordSize:         8,
		},
		Naming: Naming{
			StringPrefix: "str",
			VarPrefix:    "_var_",
			ProcPrefix:   "_fn_",
			ReturnPrefix: "_rtn_",
			TempPrefix:   "_tmp",
			EndPrefix:    "_end",
		},
		Limits: Limits{MaxDepth: 256},
		Calls:  Calls{Convention: CallsNone},
	}
}

func (o Options) check() error {
	if n := len(o.Target.SyscallRegisters); n != MaxSyscallArgs+1 {
		return fmt.Errorf("target.syscall_registers: expected %d registers, got %d", MaxSyscallArgs+1, n)
	}
	// Every generated label is a prefix followed by a counter or a name, so
	// labels stay distinct only while no prefix starts another.
	prefixes := []struct{ name, value string }{
		{"string_prefix", o.Naming.StringPrefix},
		{"var_prefix", o.Naming.VarPrefix},
		{"proc_prefix", o.Naming.ProcPrefix},
		{"return_prefix", o.Naming.ReturnPrefix},
		{"temp_prefix", o.Naming.TempPrefix},
		{"end_prefix", o.Naming.EndPrefix},
	}
	for i, a := range prefixes {
		for _, b := range prefixes[i+1:] {
			if strings.HasPrefix(a.value, b.value) || strings.HasPrefix(b.value, a.value) {
				return fmt.Errorf("naming.%s %q and naming.%s %q overlap", a.name, a.value, b.name, b.value)
			}
		}
		if strings.HasPrefix(o.Target.Entry, a.value) {
			return fmt.Errorf("target.entry %q starts with naming.%s %q", o.Target.Entry, a.name, a.value)
		}
	}
	return nil
}

type Module struct {
	dscope.Module
}

type Load func() (Options, error)

func (Module) Loader() Loader {
	return NewLoader()
}

func (Module) Load(loader Loader) Load {
	return loader.Load
}
