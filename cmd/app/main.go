package main

import "github.com/chuhuyvt/FS-Project/internal/app"

func main() {
	app.New().Run()
}
