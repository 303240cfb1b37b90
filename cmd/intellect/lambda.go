package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/spf13/cobra"
)

func lambdaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve the HTTP API as an AWS Lambda behind API Gateway",
		RunE:  runLambda,
	}
	addAppFlags(cmd)
	addServerFlags(cmd)
	return cmd
}

// runLambda serves the same router as serve. Quiz sessions live in memory, so
// they only survive while the function instance stays warm.
func runLambda(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := context.Background()

	a, err := openApp(ctx, v, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := newServer(a, v)
	if err != nil {
		return err
	}
	go srv.maintain(ctx)

	lambda.Start(httpadapter.New(srv.router).ProxyWithContext)
	return nil
}
