package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: calender (serve|view|set|del|clear|export)")
		os.Exit(1)
	}
	config, err := readConfig(".calender.toml")
	if err != nil {
		// Run on defaults when no config file is found
		config = &Config{}
		config.applyDefaults()
		verbosityLevel = 1
	}
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "serve":
		err = serveBackend(config)
	case "view":
		err = viewCalendar(config)
	case "set":
		err = setEvent(config, args)
	case "del":
		err = deleteEvent(config, args)
	case "clear":
		err = clearEvents(config)
	case "export":
		err = exportCalendar(config, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Error running %s: %v", command, err)
	}
}
