package main

import (
	"context"
	"log"
	"os"
	_ "time/tzdata"

	"github.com/dmitrijs2005/rooznegar/internal/buildinfo"
	"github.com/dmitrijs2005/rooznegar/internal/config"
	"github.com/dmitrijs2005/rooznegar/internal/server"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
