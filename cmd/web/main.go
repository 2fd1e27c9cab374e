package main

import "caterconnect_backend/internal/app"

func main() {
	app.Run()
}
