package main

import "github.com/cleitonmarx/symbiont-semantic-atlas/internal/app"

func main() {
	err := app.NewAtlasApp().Run()
	if err != nil {
		panic(err)
	}
}
