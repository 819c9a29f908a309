package main

import (
	"github.com/ilindan-dev/pitch-dispatcher/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the admin alert router.
func main() {
	fx.New(app.AlertRouterModule).Run()
}
