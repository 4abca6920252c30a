package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/corral/internal/client/cli"
)

func main() {

	ctx := context.Background()
	if err := cli.Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
