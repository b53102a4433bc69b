// cmd/genhash prints the bcrypt hash of a password, for seeding users by hand.
// Usage: go run ./cmd/genhash -p 'secret'
package main

import (
	"flag"
	"fmt"
	"os"

	"printscrap/internal/service"
)

func main() {
	password := flag.String("p", "", "password to hash")
	flag.Parse()
	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash -p <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(*password)
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
