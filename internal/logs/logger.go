package logs

import (
	"log/slog"
	"os"
	"strings"

	"github.com/reusee/dscope"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

type Module struct {
	dscope.Module
}

type Logger = *slog.Logger

// Level is shared by every logger built from the module.
type Level = *slog.LevelVar

var level = new(slog.LevelVar)

func (Module) Level() Level {
	return level
}

func (Module) Logger(
	writer Writer,
	level Level,
) Logger {
	var handlers []slog.Handler

	handlers = append(handlers, slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	))

	// stderr is connected to the journal when running under systemd
	if os.Getenv("JOURNAL_STREAM") != "" {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err == nil {
			handlers = append(handlers, journalHandler)
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	str = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
	return str
}
