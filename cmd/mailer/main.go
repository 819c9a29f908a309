package main

import (
	"github.com/ilindan-dev/pitch-dispatcher/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the user mailer and broadcast fan-out.
func main() {
	fx.New(app.MailerModule).Run()
}
