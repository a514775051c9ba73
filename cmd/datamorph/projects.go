package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"datamorph/internal/model"
)

func projectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "manage the projects that group uploads",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list projects, most recently updated first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size", Value: 20},
				},
				Action: func(c *cli.Context) error {
					tok, err := token(c)
					if err != nil {
						return err
					}
					list, err := apiClient(c).ListProjects(c.Context, tok, c.Int("page"), c.Int("page-size"))
					if err != nil {
						return err
					}
					return out(c, list)
				},
			},
			{
				Name:      "create",
				Usage:     "create an empty project",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description"},
				},
				Action: func(c *cli.Context) error {
					name, err := requireArg(c, "name")
					if err != nil {
						return err
					}
					tok, err := token(c)
					if err != nil {
						return err
					}
					req := model.ProjectCreateRequest{Name: name}
					if c.IsSet("description") {
						d := c.String("description")
						req.Description = &d
					}
					p, err := apiClient(c).CreateProject(c.Context, tok, req)
					if err != nil {
						return err
					}
					return out(c, p)
				},
			},
			{
				Name:      "show",
				Usage:     "show a project and its file count",
				ArgsUsage: "<project-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "project-id")
					if err != nil {
						return err
					}
					tok, err := token(c)
					if err != nil {
						return err
					}
					d, err := apiClient(c).GetProject(c.Context, tok, id)
					if err != nil {
						return err
					}
					return out(c, d)
				},
			},
			{
				Name:      "rm",
				Usage:     "delete a project and all of its files",
				ArgsUsage: "<project-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "project-id")
					if err != nil {
						return err
					}
					tok, err := token(c)
					if err != nil {
						return err
					}
					if err := apiClient(c).DeleteProject(c.Context, tok, id); err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.App.Writer, "deleted project %s\n", id)
					return err
				},
			},
		},
	}
}
