package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/unkn0wn-root/aimcache/template"
)

var cmdTemplate = &cli.Command{
	Name:      "template",
	Usage:     "render a stored template",
	ArgsUsage: `<entity> <entity-id> <category> <type> <language>`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "folder",
			Usage:   "top-level folder of the template store",
			EnvVars: []string{"TEMPLATE_FOLDER"},
		},
		&cli.StringFlag{
			Name:    "dir",
			Usage:   "read templates from this local directory",
			EnvVars: []string{"TEMPLATE_DIR"},
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "read templates over HTTP from this bucket URL",
			EnvVars: []string{"TEMPLATE_BASE_URL"},
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "JSON object to interpolate; omit to print the raw template",
		},
	},
	Action: runTemplate,
}

func runTemplate(cctx *cli.Context) error {
	configLogging(cctx)
	if cctx.Args().Len() != 5 {
		return fmt.Errorf("expected 5 arguments: entity, entity id, category, type, language")
	}
	var f template.Fetcher
	switch {
	case cctx.String("dir") != "":
		f = template.DirFetcher{FS: os.DirFS(cctx.String("dir"))}
	case cctx.String("base-url") != "":
		f = template.HTTPFetcher{BaseURL: cctx.String("base-url")}
	}
	s, err := template.New(template.Config{Folder: cctx.String("folder"), Fetcher: f})
	if err != nil {
		return err
	}

	a := cctx.Args()
	props := template.Props{
		Entity:   a.Get(0),
		EntityID: a.Get(1),
		Category: a.Get(2),
		Type:     a.Get(3),
		Language: a.Get(4),
	}
	if raw := cctx.String("data"); raw != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return fmt.Errorf("--data is not a JSON object: %w", err)
		}
		t, err := s.Interpolate(cctx.Context, props, data)
		if err != nil {
			return err
		}
		return printJSON(t)
	}
	t, err := s.Raw(cctx.Context, props)
	if err != nil {
		return err
	}
	return printJSON(t)
}
