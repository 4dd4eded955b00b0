package main

import (
	"streamforge/app"
	"streamforge/pkg/observability"
)

func main() {
	observability.StartProfiling("streamforge")
	app.Run()
}
