package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		log.Error().Err(err).Msg("rebalancer failed")
		os.Exit(1)
	}
}
