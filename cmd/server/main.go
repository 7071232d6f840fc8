package main

import "outlethr/internal/app/server"

func main() {
	server.Run()
}
