package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/dmitrijs2005/rooznegar/internal/bootstrap"
	"github.com/dmitrijs2005/rooznegar/internal/buildinfo"
	"github.com/dmitrijs2005/rooznegar/internal/client/cli"
	"github.com/dmitrijs2005/rooznegar/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// the terminal belongs to the REPL; logs go to the log file when set
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		logOut = io.Discard
	}

	services, err := bootstrap.Build(ctx, cfg, logOut)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer services.Close()

	app := cli.NewApp(services)
	if err := app.Run(ctx); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		log.Printf("%v", err)
	}

}
