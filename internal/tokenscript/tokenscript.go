// Package tokenscript builds token streams from Starlark scripts. A script
// calls the predeclared constructors and leaves the program in a global list
// named tokens:
//
//	x = "x"
//	tokens = [op("assign"), decl(x, 8), lit_int(5)]
package tokenscript

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/iley/dang/internal/logs"
	"github.com/iley/dang/internal/tokens"
)

// ResultName is the global a script must define.
const ResultName = "tokens"

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Load runs the script at path.
func Load(path string, logger logs.Logger) (*tokens.Stream, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token script: %w", err)
	}
	return Parse(path, src, logger)
}

// Parse runs a script and converts its tokens global into a stream. src is
// anything starlark.ExecFileOptions accepts. print() output goes to logger.
func Parse(filename string, src any, logger logs.Logger) (*tokens.Stream, error) {
	if logger == nil {
		logger = logs.Discard()
	}
	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			logger.Info(msg, "script", filename)
		},
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, predeclared())
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("token script: %s", evalErr.Backtrace())
		}
		return nil, fmt.Errorf("token script: %w", err)
	}

	result, ok := globals[ResultName]
	if !ok {
		return nil, fmt.Errorf("token script %s: global %q is not defined", filename, ResultName)
	}
	return toStream(filename, result)
}

func toStream(filename string, result starlark.Value) (*tokens.Stream, error) {
	iter := starlark.Iterate(result)
	if iter == nil {
		return nil, fmt.Errorf("token script %s: %s must be a list, got %s", filename, ResultName, result.Type())
	}
	defer iter.Done()

	stream := tokens.New()
	var elem starlark.Value
	for i := 0; iter.Next(&elem); i++ {
		tok, ok := elem.(Value)
		if !ok {
			return nil, fmt.Errorf("token script %s: %s[%d] is a %s, not a token", filename, ResultName, i, elem.Type())
		}
		stream.Append(tok.Token)
	}
	return stream, nil
}

func predeclared() starlark.StringDict {
	return starlark.StringDict(lo.MapValues(builtins, func(fn builtinFunc, name string) starlark.Value {
		return starlark.NewBuiltin(name, fn)
	}))
}
