package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/dscope"

	"github.com/iley/dang/internal/codegen"
	"github.com/iley/dang/internal/config"
	"github.com/iley/dang/internal/logs"
	"github.com/iley/dang/internal/tokenscript"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	var configFiles stringList
	outputString := flag.String("o", "", "output file name, - for stdout")
	flag.Var(&configFiles, "config", "CUE configuration file (repeatable)")
	verbose := flag.Bool("v", false, "log every pass")
	dump := flag.Bool("dump", false, "print the token stream left after generation")
	flag.Parse()

	if len(flag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: dangc [options] <token script>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputFileName := flag.Arg(0)

	if *outputString == "" {
		*outputString = strings.TrimSuffix(inputFileName, filepath.Ext(inputFileName)) + ".asm"
	}

	scope := dscope.New(
		new(logs.Module),
		new(config.Module),
	).Fork(
		dscope.Provide(config.NewLoader(configFiles...)),
	)

	scope.Call(func(
		logger logs.Logger,
		level logs.Level,
		load config.Load,
	) {
		if *verbose {
			level.Set(slog.LevelDebug)
		}

		opts, err := load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		stream, err := tokenscript.Load(inputFileName, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
			os.Exit(1)
		}
		logger.Debug("token stream loaded", "input", inputFileName, "tokens", stream.Len())

		program, err := codegen.Generate(stream, opts, logger)
		if *dump {
			fmt.Fprint(os.Stderr, stream)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		if *outputString == "-" {
			if _, err := program.WriteTo(os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := codegen.WriteFile(*outputString, program); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		logger.Debug("assembly written", "output", *outputString)
	})
}
