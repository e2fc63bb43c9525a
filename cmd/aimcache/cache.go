package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

var ttlFlag = &cli.DurationFlag{
	Name:  "ttl",
	Usage: "expiry for written keys; 0 keeps them forever",
}

var cmdGet = &cli.Command{
	Name:      "get",
	Usage:     "print the JSON value stored at a key",
	ArgsUsage: `<key>`,
	Action:    runGet,
}

var cmdPut = &cli.Command{
	Name:      "put",
	Usage:     "store a JSON value (argument, or stdin when omitted)",
	ArgsUsage: `<key> [json]`,
	Flags:     []cli.Flag{ttlFlag},
	Action:    runPut,
}

var cmdHas = &cli.Command{
	Name:      "has",
	Usage:     "report whether a key exists",
	ArgsUsage: `<key>`,
	Action:    runHas,
}

var cmdDel = &cli.Command{
	Name:      "del",
	Usage:     "delete a key",
	ArgsUsage: `<key>`,
	Action:    runDel,
}

var cmdPop = &cli.Command{
	Name:      "pop",
	Usage:     "print and delete the value at a key",
	ArgsUsage: `<key>`,
	Action:    runPop,
}

var cmdHGet = &cli.Command{
	Name:      "hget",
	Usage:     "print hash fields as a JSON object; absent fields are null",
	ArgsUsage: `<key> <field>...`,
	Action:    runHGet,
}

var cmdHSet = &cli.Command{
	Name:      "hset",
	Usage:     "write hash fields given as field=json pairs",
	ArgsUsage: `<key> <field=json>...`,
	Flags:     []cli.Flag{ttlFlag},
	Action:    runHSet,
}

func keyArg(cctx *cli.Context) (string, error) {
	key := cctx.Args().First()
	if key == "" {
		return "", fmt.Errorf("expected a key argument")
	}
	return key, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runGet(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	v, ok := c.Get(cctx.Context, key)
	if !ok {
		return cli.Exit("not found", 1)
	}
	return printJSON(v)
}

func runPut(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	raw := cctx.Args().Get(1)
	if raw == "" {
		b, err := readStdin()
		if err != nil {
			return err
		}
		raw = string(b)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("value is not JSON: %w", err)
	}

	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	if !c.Put(cctx.Context, key, v, cctx.Duration("ttl")) {
		return cli.Exit("write failed", 1)
	}
	return nil
}

func runHas(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	ok := c.Has(cctx.Context, key)
	fmt.Println(ok)
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

func runDel(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	c.Destroy(cctx.Context, key)
	return nil
}

func runPop(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	v, ok := c.Pop(cctx.Context, key)
	if !ok {
		return cli.Exit("not found", 1)
	}
	return printJSON(v)
}

func runHGet(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	fields := cctx.Args().Tail()
	if len(fields) == 0 {
		return fmt.Errorf("expected at least one field")
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	got, err := c.MultiGet(cctx.Context, key, fields)
	if err != nil {
		return err
	}
	out := make(map[string]any, len(got))
	for _, f := range got {
		out[f.Name] = nil
		if f.Found {
			out[f.Name] = f.Value
		}
	}
	return printJSON(out)
}

func runHSet(cctx *cli.Context) error {
	key, err := keyArg(cctx)
	if err != nil {
		return err
	}
	fields, err := parseFieldPairs(cctx.Args().Tail())
	if err != nil {
		return err
	}
	c, err := openCache[any](cctx)
	if err != nil {
		return err
	}
	defer closeCache(c)

	if !c.MultiPut(cctx.Context, key, fields, cctx.Duration("ttl")) {
		return cli.Exit("write failed", 1)
	}
	return nil
}

// parseFieldPairs turns field=json arguments into values. A value that is
// not valid JSON is stored as a string.
func parseFieldPairs(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one field=value pair")
	}
	out := make(map[string]any, len(args))
	for _, a := range args {
		name, raw, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed pair %q (want field=value)", a)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[name] = v
	}
	return out, nil
}
