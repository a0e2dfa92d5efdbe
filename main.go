package main

import (
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"yashubustudio/hccmapper/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json")
	flag.Parse()
	if err := app.Run(*configPath); err != nil {
		log.Fatal().Err(err).Msg("hcc desktop")
	}
}
