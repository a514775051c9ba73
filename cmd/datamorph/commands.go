package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"datamorph/internal/client"
	"datamorph/internal/model"
)

func out(c *cli.Context, v any) error {
	return render(c.App.Writer, c.String("output"), v)
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "create an account and print the issued tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"DATAMORPH_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "full-name", Required: true},
		},
		Action: func(c *cli.Context) error {
			res, err := apiClient(c).Signup(c.Context, c.String("email"), c.String("password"), c.String("full-name"))
			if err != nil {
				return err
			}
			return out(c, res)
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "exchange credentials for tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"DATAMORPH_PASSWORD"}, Required: true},
			&cli.BoolFlag{Name: "token-only", Usage: "print just the access token"},
		},
		Action: func(c *cli.Context) error {
			res, err := apiClient(c).Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			if c.Bool("token-only") {
				tok := res.AccessToken()
				if tok == "" {
					return errors.New("login response carried no access token")
				}
				_, err := fmt.Fprintln(c.App.Writer, tok)
				return err
			}
			return out(c, res)
		},
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:      "refresh",
		Usage:     "exchange a refresh token for a new token pair",
		ArgsUsage: "<refresh-token>",
		Action: func(c *cli.Context) error {
			rt, err := requireArg(c, "refresh-token")
			if err != nil {
				return err
			}
			pair, err := apiClient(c).Refresh(c.Context, rt)
			if err != nil {
				return err
			}
			return out(c, pair)
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the profile of the token's owner",
		Action: func(c *cli.Context) error {
			tok, err := token(c)
			if err != nil {
				return err
			}
			u, err := apiClient(c).Me(c.Context, tok)
			if err != nil {
				return err
			}
			return out(c, u)
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "upload a file, optionally waiting for processing to finish",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "project", Usage: "project id to attach the file to"},
			&cli.BoolFlag{Name: "watch", Usage: "poll processing progress until it finishes"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "poll interval for --watch"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			tok, err := token(c)
			if err != nil {
				return err
			}

			req, f, err := client.OpenFile(path)
			if err != nil {
				return err
			}
			defer f.Close()
			req.Token = tok
			req.ProjectID = c.String("project")

			api := apiClient(c)
			res, err := api.UploadFile(c.Context, req, func(pct int) {
				fmt.Fprintf(c.App.ErrWriter, "\ruploading %s: %3d%%", req.Filename, pct)
			})
			fmt.Fprintln(c.App.ErrWriter)
			if err != nil {
				return err
			}
			if !c.Bool("watch") {
				return out(c, res)
			}

			p, err := watch(c, api, tok, res.ID)
			if err != nil {
				return err
			}
			if err := out(c, p); err != nil {
				return err
			}
			if p.Status == model.StatusFailed {
				return fmt.Errorf("processing failed: %s", p.Error)
			}
			return nil
		},
	}
}

// watch polls until the file reaches done or failed.
func watch(c *cli.Context, api *client.Client, tok, fileID string) (*model.FileProgress, error) {
	ticker := time.NewTicker(c.Duration("interval"))
	defer ticker.Stop()

	last := -1
	for {
		p, err := api.UploadProgress(c.Context, tok, fileID)
		if err != nil {
			return nil, err
		}
		if p.Progress != last {
			last = p.Progress
			fmt.Fprintf(c.App.ErrWriter, "processing %s: %s %d%%\n", fileID, p.Status, p.Progress)
		}
		if p.Status == model.StatusDone || p.Status == model.StatusFailed {
			return p, nil
		}
		select {
		case <-c.Context.Done():
			return nil, c.Context.Err()
		case <-ticker.C:
		}
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show processing progress of an uploaded file",
		ArgsUsage: "<file-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "details", Usage: "show the full file record"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "file-id")
			if err != nil {
				return err
			}
			tok, err := token(c)
			if err != nil {
				return err
			}
			if c.Bool("details") {
				info, err := apiClient(c).GetFile(c.Context, tok, id)
				if err != nil {
					return err
				}
				return out(c, info)
			}
			p, err := apiClient(c).UploadProgress(c.Context, tok, id)
			if err != nil {
				return err
			}
			return out(c, p)
		},
	}
}

func filesCommand() *cli.Command {
	return &cli.Command{
		Name:      "files",
		Usage:     "list a project's files, newest first",
		ArgsUsage: "<project-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "page-size", Value: 20},
		},
		Action: func(c *cli.Context) error {
			pid, err := requireArg(c, "project-id")
			if err != nil {
				return err
			}
			tok, err := token(c)
			if err != nil {
				return err
			}
			list, err := apiClient(c).ListProjectFiles(c.Context, tok, pid, c.Int("page"), c.Int("page-size"))
			if err != nil {
				return err
			}
			return out(c, list)
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "delete an uploaded file",
		ArgsUsage: "<file-id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "file-id")
			if err != nil {
				return err
			}
			tok, err := token(c)
			if err != nil {
				return err
			}
			if err := apiClient(c).DeleteFile(c.Context, tok, id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
			return err
		},
	}
}
