package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/swdee/go-rgbdtrack"
	"github.com/swdee/go-rgbdtrack/config"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	configFile := flag.String("c", "config.json", "Configuration file (JSON or YAML)")
	videoFile := flag.String("v", "", "Colour video file to track the object in")
	depthPath := flag.String("d", "", "Aligned depth video or image sequence pattern eg: depth/%06d.png, overrides depth_path")
	flag.Parse()

	if *videoFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	launcher := rgbdtrack.DefaultLauncher()
	launcher.DepthPath = *depthPath

	positions, err := launcher.Launch(*configFile, *videoFile)

	if errors.Is(err, config.ErrConfig) || errors.Is(err, config.ErrKeyNotFound) ||
		errors.Is(err, config.ErrWrongType) {
		log.Fatal("Error loading configuration: ", err)
	}

	if err != nil {
		log.Fatal("Tracking failed: ", err)
	}

	for _, p := range positions {
		fmt.Println(p)
	}

	log.Printf("done, object tracked in %d frames", len(positions))
}
