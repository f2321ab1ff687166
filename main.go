package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/samber/lo"
	"github.com/tonymushah/mangadex-api-sub002/cmd"
	"github.com/tonymushah/mangadex-api-sub002/config"
	"github.com/tonymushah/mangadex-api-sub002/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Execute(ctx)
}
