package main

import (
	"fmt"
	"log"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/stahnma/gh-trending/internal/commands"
	"github.com/stahnma/gh-trending/internal/config"
	lambdapkg "github.com/stahnma/gh-trending/internal/lambda"
	"github.com/stahnma/gh-trending/internal/logging"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		log.Fatalf("Error reading configuration: %v", err)
	}

	app, err := commands.NewApp(cfg, GitSHA, GitDirty)
	if err != nil {
		log.Fatalf("Error initializing application: %v", err)
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		app.Log = logging.NewJSON(os.Stderr, cfg.DebugMode)
		awslambda.Start(lambdapkg.NewHandler(app))
	} else {
		rootCmd := app.NewRootCommand()
		if err := rootCmd.Execute(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := app.SaveCache(); err != nil {
			log.Fatalf("Error saving cache: %v", err)
		}
	}
}
