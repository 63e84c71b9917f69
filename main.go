package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/campushub/events-api/cmd/app"
)

// @title           CampusHub Events API
// @description     Event registration and settlement for the campus events platform.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
