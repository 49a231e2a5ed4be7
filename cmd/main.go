package main

import (
	"ChunkStream/pkg/utils"
	"ChunkStream/pkg/version"
	"os"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("chunkstream")

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of log file",
		},
		&cli.BoolFlag{
			Name:  "debug-agent",
			Usage: "start a gops agent for live diagnostics",
		},
	}
}

func setLoggerLevel(c *cli.Context) {
	switch {
	case c.Bool("trace"):
		utils.SetLogLevel(logrus.TraceLevel)
	case c.Bool("verbose"):
		utils.SetLogLevel(logrus.DebugLevel)
	case c.Bool("quiet"):
		utils.SetLogLevel(logrus.WarnLevel)
	default:
		utils.SetLogLevel(logrus.InfoLevel)
	}
	if p := c.String("log"); p != "" {
		if err := utils.SetOutFile(p); err != nil {
			logger.Warnf("open log file %s: %s", p, err)
		}
	}
}

func before(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Bool("debug-agent") {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Warnf("start gops agent: %s", err)
		}
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:                 "chunkstream",
		Usage:                "A growable byte stream stored in fixed-size chunks",
		Version:              version.Full(),
		Flags:                globalFlags(),
		Before:               before,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			copyFlags(),
			benchFlags(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
