/*
Copyright © 2026 Igor Mironchik
*/
package main

import (
	"github.com/alecthomas/kong"
	"github.com/igormironchik/md4qt/cmd"
)

func main() {
	cli := &cmd.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("md4qt"),
		kong.Description("CommonMark parser with virgin source positions"),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
