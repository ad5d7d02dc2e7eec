package main

import "shiftscan/internal/app"

func main() {
	app.Main()
}
