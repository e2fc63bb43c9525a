package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/unkn0wn-root/aimcache/partner"
)

var partnerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "partner-endpoint",
		Usage:    "base URL of the partner service",
		Required: true,
		EnvVars:  []string{"PARTNER_ENDPOINT"},
	},
	&cli.StringFlag{
		Name:     "partner-client-id",
		Required: true,
		EnvVars:  []string{"PARTNER_CLIENT_ID"},
	},
	&cli.StringFlag{
		Name:     "partner-client-secret",
		Required: true,
		EnvVars:  []string{"PARTNER_CLIENT_SECRET"},
	},
	&cli.StringFlag{
		Name:    "env",
		Usage:   "environment used to namespace cache keys",
		Value:   "development",
		EnvVars: []string{"APP_ENV"},
	},
}

var cmdPartner = &cli.Command{
	Name:  "partner",
	Usage: "look up partner records",
	Subcommands: []*cli.Command{
		{
			Name:      "get",
			Usage:     "fetch one partner, through the cache unless --no-cache",
			ArgsUsage: `<partner-key>`,
			Flags: append([]cli.Flag{
				&cli.BoolFlag{Name: "no-cache"},
			}, partnerFlags...),
			Action: runPartnerGet,
		},
		{
			Name:   "list",
			Usage:  "list every partner as an OAuth client",
			Flags:  partnerFlags,
			Action: runPartnerList,
		},
	},
}

func newPartnerService(cctx *cli.Context, cache bool) (*partner.Service, func(), error) {
	cfg := partner.Config{
		Endpoint:     cctx.String("partner-endpoint"),
		ClientID:     cctx.String("partner-client-id"),
		ClientSecret: cctx.String("partner-client-secret"),
		Environment:  cctx.String("env"),
	}
	if !cache {
		s, err := partner.New(cfg, nil)
		return s, func() {}, err
	}
	c, err := openCache[partner.Info](cctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := partner.New(cfg, c)
	if err != nil {
		closeCache(c)
		return nil, nil, err
	}
	return s, func() { closeCache(c) }, nil
}

func runPartnerGet(cctx *cli.Context) error {
	key := cctx.Args().First()
	if key == "" {
		return fmt.Errorf("expected a partner key argument")
	}
	useCache := !cctx.Bool("no-cache")
	s, done, err := newPartnerService(cctx, useCache)
	if err != nil {
		return err
	}
	defer done()

	info, ok := s.Get(cctx.Context, key, useCache)
	if !ok {
		return cli.Exit("not found", 1)
	}
	return printJSON(info)
}

func runPartnerList(cctx *cli.Context) error {
	configLogging(cctx)
	s, done, err := newPartnerService(cctx, false)
	if err != nil {
		return err
	}
	defer done()

	clients, err := s.GetAll(cctx.Context)
	if err != nil {
		return err
	}
	return printJSON(clients)
}
