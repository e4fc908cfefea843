package main

// General API documentation for swaggo. Run `swag init -g cmd/shufflerd/docs.go` to regenerate docs.
//
// @title           shufflerd API
// @version         0.1
// @description     Control and observe the frame shuffling pipeline.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
