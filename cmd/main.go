package main

import (
	"log"

	"github.com/ggorockee/reviewmaps-alerts/cmd/alerter"
	"github.com/ggorockee/reviewmaps-alerts/internal/adapters/config"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	app, err := alerter.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	if err = app.Start(); err != nil {
		log.Panic(err)
	}
}
