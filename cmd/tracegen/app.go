package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"github.com/Microsoft/go-nativetrace"
	ntlogrus "github.com/Microsoft/go-nativetrace/handlers/logrus"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// tracegen generates synthetic spans and events against a real provider
// session, for exercising trace collection end to end:
// `tracegen spans -provider Contoso.App` with a listener attached
// (logman/traceview on Windows, perf on Linux).

const (
	providerFlagName = "provider"
	keywordFlagName  = "keyword"
	levelFlagName    = "level"
	csFlagName       = "common-schema"
	timingFlagName   = "timing"
	countFlagName    = "count"
	depthFlagName    = "depth"
	delayFlagName    = "delay"
)

var appCommands = []*cli.Command{
	spansCommand,
	eventsCommand,
	logsCommand,
}

func app() *cli.App {
	app := &cli.App{
		Name:           "tracegen",
		Usage:          "generate synthetic spans and events through the OS-native trace backends",
		Commands:       appCommands,
		ExitErrHandler: errHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  providerFlagName,
				Usage: "provider name to register",
				Value: "Contoso.Tracegen",
			},
			&cli.Uint64Flag{
				Name:  keywordFlagName,
				Usage: "keyword to emit with",
				Value: 1,
			},
			&cli.UintFlag{
				Name:  levelFlagName,
				Usage: "level to emit at (1 critical .. 6 trace)",
				Value: uint(event.LevelInfo),
			},
			&cli.BoolFlag{
				Name:  csFlagName,
				Usage: "emit in the Common Schema 4.0 mapping",
			},
			&cli.BoolFlag{
				Name:  timingFlagName,
				Usage: "add duration fields to span stop events",
			},
			&cli.UintFlag{
				Name:  countFlagName,
				Usage: "number of iterations to generate",
				Value: 10,
			},
			&cli.DurationFlag{
				Name:  delayFlagName,
				Usage: "delay between iterations",
				Value: 10 * time.Millisecond,
			},
		},
	}
	return app
}

func errHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}
	s := c.App.Name
	if c.Command != nil && c.Command.Name != "" {
		s += " " + c.Command.Name
	}
	cli.HandleExitCoder(cli.Exit(fmt.Errorf("%s: %w", s, err), 1))
}

func newEmitter(c *cli.Context) (*nativetrace.Emitter, error) {
	opts := []nativetrace.Option{
		nativetrace.WithDefaultKeyword(c.Uint64(keywordFlagName)),
		nativetrace.WithErrorHandler(func(err error) {
			logrus.WithError(err).Warn("emit error")
		}),
	}
	if c.Bool(csFlagName) {
		opts = append(opts, nativetrace.WithCommonSchema())
	}
	if c.Bool(timingFlagName) {
		opts = append(opts, nativetrace.WithSpanTiming())
	}
	return nativetrace.New(c.String(providerFlagName), opts...)
}

var spansCommand = &cli.Command{
	Name:  "spans",
	Usage: "generate nested spans with typed fields",
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  depthFlagName,
			Usage: "span nesting depth per iteration",
			Value: 3,
		},
	},
	Action: func(c *cli.Context) error {
		em, err := newEmitter(c)
		if err != nil {
			return err
		}
		defer em.Close()

		lvl := event.Level(c.Uint(levelFlagName))
		kw := c.Uint64(keywordFlagName)
		depth := int(c.Uint(depthFlagName))
		sc := em.NewScope()

		for i := 0; i < int(c.Uint(countFlagName)); i++ {
			if err := nest(em, sc, lvl, kw, i, depth); err != nil {
				return err
			}
			time.Sleep(c.Duration(delayFlagName))
		}
		return nil
	},
}

// nest opens a span, recurses to the requested depth, records one event at
// the bottom, and unwinds.
func nest(em *nativetrace.Emitter, sc *nativetrace.Scope, lvl event.Level, kw uint64, iter, depth int) error {
	if depth == 0 {
		return em.EventRecord(sc, "LeafEvent", lvl, kw, []event.Field{
			event.StringField("message", "reached the bottom"),
			event.Int32Field("iteration", int32(iter)),
		})
	}

	s, err := em.SpanCreate(fmt.Sprintf("Work.Depth%d", depth), lvl, kw, []event.Field{
		event.Int32Field("iteration", int32(iter)),
		event.Int32Field("depth", int32(depth)),
		event.BoolField("leaf", depth == 1),
	})
	if err != nil {
		return err
	}
	defer em.SpanClose(s)

	if err := em.SpanEnter(sc, s); err != nil {
		return err
	}
	err = nest(em, sc, lvl, kw, iter, depth-1)
	if xerr := em.SpanExit(sc, s); err == nil {
		err = xerr
	}
	return err
}

var eventsCommand = &cli.Command{
	Name:  "events",
	Usage: "generate standalone events exercising every field type",
	Action: func(c *cli.Context) error {
		em, err := newEmitter(c)
		if err != nil {
			return err
		}
		defer em.Close()

		lvl := event.Level(c.Uint(levelFlagName))
		kw := c.Uint64(keywordFlagName)
		sc := em.NewScope()

		for i := 0; i < int(c.Uint(countFlagName)); i++ {
			err := em.EventRecord(sc, "TypeSampler", lvl, kw, []event.Field{
				event.BoolField("flag", i%2 == 0),
				event.Int64Field("counter", int64(i)),
				event.Uint16Field("port", 8080),
				event.Float64Field("ratio", float64(i)/10),
				event.StringField("message", "synthetic event"),
				event.BytesField("blob", []byte{0xde, 0xad, 0xbe, 0xef}),
				event.Group("peer",
					event.StringField("host", "localhost"),
					event.Uint16Field("port", 443),
				),
			})
			if err != nil {
				return err
			}
			time.Sleep(c.Duration(delayFlagName))
		}
		return nil
	},
}

var logsCommand = &cli.Command{
	Name:  "logs",
	Usage: "mirror logrus output into the trace session",
	Action: func(c *cli.Context) error {
		em, err := newEmitter(c)
		if err != nil {
			return err
		}
		defer em.Close()

		logger := logrus.New()
		logger.AddHook(ntlogrus.New(em, c.Uint64(keywordFlagName)))

		for i := 0; i < int(c.Uint(countFlagName)); i++ {
			logger.WithFields(logrus.Fields{
				"iteration": i,
				"source":    "tracegen",
			}).Info("synthetic log entry")
			time.Sleep(c.Duration(delayFlagName))
		}
		return nil
	},
}
