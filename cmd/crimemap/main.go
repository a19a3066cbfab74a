package main

import (
	"os"

	"horse.fit/crimemap/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
