package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/iqube/internal/client/cli"
	"github.com/dmitrijs2005/iqube/internal/client/config"
	"github.com/dmitrijs2005/iqube/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	// everything that is not a config flag is the command to run
	args := flagx.RemoveArgs(os.Args[1:], append([]string{"-c", "-config", "--config"}, config.Flags...))
	os.Exit(app.Run(ctx, args))

}
