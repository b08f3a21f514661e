// Command ffmerge combines the force fields of the QUBEKit runs found in the
// current directory into combined.xml. A YAML configuration file can be
// given as the only argument.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ffmerge/ffmerge"
	"github.com/ffmerge/ffmerge/cfg"
)

func main() {
	if len(os.Args) > 2 {
		log.Fatal("Usage: ffmerge [config.yaml]")
	}

	c := cfg.Default()
	if len(os.Args) == 2 {
		log.Printf("Reading configuration file `%s`\n", os.Args[1])
		var err error
		c, err = cfg.New(os.Args[1])
		if err != nil {
			log.Fatal(fmt.Errorf("cfg.New: %w", err))
		}
	}

	logger := log.Default()
	opts := c.Options()
	opts.Logger = logger

	logger.Printf("root=%s\n", c.Root)
	logger.Printf("layout=%s\n", c.Layout)
	logger.Printf("output=%s\n", c.Output)
	logger.Printf("optimise=%v\n", c.Optimise)

	report, err := ffmerge.Run(os.DirFS(c.Root), opts)
	if err != nil {
		log.Fatal(err)
	}
	report.Log(logger)

	log.Println("Done")
}
