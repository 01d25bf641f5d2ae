package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/eaglebank/ledger-service/internal/logger"
	"github.com/eaglebank/ledger-service/internal/utils"
)

// ledger-passwd prints the bcrypt hash to use as LEDGER_PASSWORD_HASH. The
// password is read from -password or, when that is empty, the first line of
// stdin.
func main() {
	password := flag.String("password", "", "password to hash")
	flag.Parse()

	log := logger.New(logger.Options{Level: "info", Format: "console", Out: os.Stderr})

	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("Failed to read password from stdin")
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	if *password == "" {
		log.Fatal().Msg("Password cannot be empty")
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}
	fmt.Println(hash)
}
