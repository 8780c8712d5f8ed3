package main

import "github.com/avolkov/tasktick/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustOpenStore()
	defer app.CloseStore()

	app.MustStartCore()
	defer app.StopCore()

	app.MustListenAndServeHTTP()
}
