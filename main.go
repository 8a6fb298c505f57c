/*
anima-assets loads assets through the cached load pipeline, realizes them on
a headless renderer and prints the cache contents.

	anima-assets [-config anima.toml] [-watch] [-write out.png] asset...
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-assets/engine"
	"github.com/spaghettifunk/anima-assets/engine/core"
)

func main() {
	configPath := flag.String("config", "anima.toml", "path of the TOML configuration file")
	watch := flag.Bool("watch", false, "keep running and reload assets whose files change")
	writeTarget := flag.String("write", "", "write the first loaded asset to this path, relative to the asset base path")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] asset...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if *watch {
		cfg.Assets.Watch = true
	}

	e, err := engine.New(&engine.ApplicationConfig{
		Name:        "anima-assets",
		Config:      cfg,
		Assets:      flag.Args(),
		WriteTarget: *writeTarget,
		Output:      os.Stdout,
	}, nil)
	if err != nil {
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = e.Shutdown()
	}()

	if err := e.Run(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.Shutdown(); err != nil {
		core.LogFatal(err.Error())
	}
}
