package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"datamorph/internal/client"
	"datamorph/internal/config"
	"datamorph/internal/logger"
	"datamorph/internal/otel"
)

const (
	metaClient   = "client"
	metaShutdown = "otel_shutdown"
)

var errNoToken = errors.New("an access token is required: pass --token or set DATAMORPH_TOKEN")

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "datamorph",
		Usage:     "upload files to DataMorph and follow their processing",
		Version:   client.Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "API base URL",
				EnvVars: []string{"DATAMORPH_API_URL", "NEXT_PUBLIC_API_URL"},
				Value:   config.DefaultAPIURL,
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer access token",
				EnvVars: []string{"DATAMORPH_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: json or yaml",
				Value:   formatJSON,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
		},
		Before: setup,
		After:  teardown,
		// Errors are printed by main; urfave must not exit the process.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			signupCommand(),
			loginCommand(),
			refreshCommand(),
			whoamiCommand(),
			uploadCommand(),
			statusCommand(),
			filesCommand(),
			rmCommand(),
			projectsCommand(),
		},
	}
}

func setup(c *cli.Context) error {
	if err := checkFormat(c.String("output")); err != nil {
		return err
	}
	cfg := config.Load()
	log := logger.Configure(logger.Config{
		Level:  c.String("log-level"),
		Pretty: true,
		Output: c.App.ErrWriter,
	})

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown, err := otel.Init(c.Context, "datamorph-cli", log)
		if err != nil {
			return err
		}
		c.App.Metadata[metaShutdown] = shutdown
	}

	api, err := client.New(c.String("api-url"),
		client.WithLogger(logger.Component("client")),
		client.WithUserAgent(cfg.Client.UserAgent),
	)
	if err != nil {
		return err
	}
	c.App.Metadata[metaClient] = api
	return nil
}

func teardown(c *cli.Context) error {
	shutdown, ok := c.App.Metadata[metaShutdown].(otel.ShutdownFunc)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdown(ctx)
}

func apiClient(c *cli.Context) *client.Client {
	return c.App.Metadata[metaClient].(*client.Client)
}

func token(c *cli.Context) (string, error) {
	t := c.String("token")
	if t == "" {
		return "", errNoToken
	}
	return t, nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 || c.Args().First() == "" {
		return "", errors.New(c.Command.Name + ": missing <" + name + "> argument")
	}
	return c.Args().First(), nil
}
