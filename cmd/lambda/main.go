package main

import (
	"context"
	"fmt"
	"os"

	"shortener/internal/app"
	"shortener/internal/config"
	shortlambda "shortener/internal/lambda"
	"shortener/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.NewLambdaConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// CloudWatch wants plain JSON lines.
	log, _, err := logger.NewLogger(logger.Options{Level: cfg.LogLevel, Format: config.LogFormatJSON})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Connections are built once per container and reused across invocations.
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	lambda.Start(shortlambda.NewHandler(a.Gateway, log).Handle)
}
