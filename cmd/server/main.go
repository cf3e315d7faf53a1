package main

import "learnbox/internal/app"

// @title           LearnBox Auth API
// @version         1.0
// @description     Registration, login, JWT sessions, email verification and password reset.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
