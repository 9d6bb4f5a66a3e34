package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"flocksync/internal/config"
	"flocksync/internal/fetch"
	"flocksync/internal/logging"
	"flocksync/internal/metrics"
	"flocksync/internal/server"
	"flocksync/internal/store/accountdb"
	"flocksync/internal/sync"
	"flocksync/internal/xclient"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "serve":
		cmdServe()
	case "sync":
		cmdSync()
	case "accounts":
		cmdAccounts()
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println("Usage: flocksync <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./flocksync.yaml")
	fmt.Println("  serve       Run the sync trigger HTTP server")
	fmt.Println("  sync        Run one sync pipeline and exit")
	fmt.Println("  accounts    Manage tracked accounts (add, list)")
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./flocksync.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	fmt.Println("Config written to:", abs)
}

func buildOrchestrator(cfg config.Config) (*sync.Orchestrator, *accountdb.DB, error) {
	db, err := accountdb.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, err
	}
	client := xclient.NewHTTPClient(xclient.Credentials{
		ConsumerKey:    cfg.Credentials.ConsumerKey,
		ConsumerSecret: cfg.Credentials.ConsumerSecret,
		AccessToken:    cfg.Credentials.AccessToken,
		AccessSecret:   cfg.Credentials.AccessSecret,
	})
	o := sync.New(db,
		fetch.NewProfileFetcher(client),
		fetch.NewActivityFetcher(client, cfg.Stats.SinceDays),
		cfg.Sync.TaskTimeout())
	return o, db, nil
}

func mustLoadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if cfg.Credentials.ConsumerKey == "" {
		fmt.Println("warning: missing Twitter credentials; API calls will fail")
	}
	return cfg
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocksync.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)

	o, db, err := buildOrchestrator(cfg)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()

	metrics.StartServer(cfg.Server.MetricsAddr)
	if cfg.Sync.Interval() > 0 {
		go func() { _ = o.RunLoop(context.Background(), cfg.Sync.Interval()) }()
	}
	logging.Info("serve", map[string]any{"addr": cfg.Server.Addr})
	if err := http.ListenAndServe(cfg.Server.Addr, server.New(o)); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdSync() {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocksync.yaml", "config path")
	pipeline := fs.String("pipeline", "all", "pipeline to run: profiles, tweets, or all")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)

	o, db, err := buildOrchestrator(cfg)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	var rep sync.Report
	switch *pipeline {
	case "profiles":
		rep, err = o.RunProfiles(ctx)
	case "tweets":
		rep, err = o.RunStats(ctx)
	case "all":
		rep, err = o.RunAll(ctx)
	default:
		fmt.Println("error: unknown pipeline", *pipeline)
		os.Exit(1)
	}
	fmt.Printf("state=%s accounts=%d save_errors=%d duration=%s\n", rep.State, rep.Accounts, rep.SaveErrors, rep.Duration)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdAccounts() {
	sub := ""
	if len(os.Args) > 2 {
		sub = os.Args[2]
	}
	switch sub {
	case "add":
		fs := flag.NewFlagSet("accounts add", flag.ExitOnError)
		cfgPath := fs.String("config", "./flocksync.yaml", "config path")
		handle := fs.String("handle", "", "twitter handle to track")
		_ = fs.Parse(os.Args[3:])
		if *handle == "" {
			fmt.Println("error: -handle is required")
			os.Exit(1)
		}
		cfg := mustLoadConfig(*cfgPath)
		db, err := accountdb.Open(cfg.Storage.DBPath)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		defer db.Close()
		a, err := db.Add(context.Background(), *handle)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		fmt.Printf("added %s id=%s\n", a.TwitterName, a.ID)
	case "list":
		fs := flag.NewFlagSet("accounts list", flag.ExitOnError)
		cfgPath := fs.String("config", "./flocksync.yaml", "config path")
		_ = fs.Parse(os.Args[3:])
		cfg := mustLoadConfig(*cfgPath)
		db, err := accountdb.Open(cfg.Storage.DBPath)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		defer db.Close()
		accounts, err := db.List(context.Background())
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		for _, a := range accounts {
			fmt.Printf("@%s id=%s twitter_id=%s followers=%d recent=%d/%d/%d status=%q\n",
				a.TwitterName, a.ID, a.TwitterID, a.Followers,
				a.RetweetsRecent, a.FavoritesRecent, a.TweetsRecent, a.Status)
		}
	default:
		fmt.Println("Usage: flocksync accounts <add|list> [options]")
	}
}
