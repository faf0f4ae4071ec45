package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/client"
	"github.com/Sternrassler/feedscroll/pkg/config"
	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/Sternrassler/feedscroll/pkg/loader"
	"github.com/Sternrassler/feedscroll/pkg/location"
	"github.com/Sternrassler/feedscroll/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// BrowseCmd renders a feed in a terminal viewport and loads more pages as the
// sentinel below the last item scrolls into view.
type BrowseCmd struct {
	Location string        `arg:"" optional:"" default:"/" help:"Feed location carrying the page cursor, e.g. /feed?page=4."`
	BaseURL  string        `help:"Provider base URL (overrides provider.base_url)." name:"base-url"`
	Rows     int           `help:"Viewport height in rows." default:"8"`
	Auto     int           `help:"Scroll this many viewport heights without keyboard input, then exit (0 = interactive)."`
	Step     time.Duration `help:"Pause between automatic scroll steps." default:"0s"`
}

// Run starts the browse session.
func (b *BrowseCmd) Run(cfg *config.Config) error {
	if b.BaseURL != "" {
		cfg.Provider.BaseURL = b.BaseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return b.run(ctx, cfg, os.Stdin, os.Stdout)
}

// browseKeys lists the interactive key bindings.
const browseKeys = "keys: [enter]/j down, d page down, k up, u page up, r retry, q quit"

func (b *BrowseCmd) run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := logging.NewLogger("feedscroll-browse")

	fetcher, closeFetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	loc, err := location.Parse(b.Location)
	if err != nil {
		return err
	}

	changes := make(chan loader.State, 16)
	l, err := loader.New(loader.Config{
		Fetcher:        fetcher,
		Location:       loc,
		MaxConcurrency: cfg.Loader.MaxConcurrency,
		PageTimeout:    cfg.Loader.PageTimeout,
		OnChange: func(s loader.State) {
			select {
			case changes <- s:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		l.Close()
		l.Wait()
		fmt.Fprintf(out, "location: %s\n", loc.String())
	}()

	if err := l.Start(ctx); err != nil {
		return err
	}

	vp := newViewport(b.Rows, out)
	refresh := func() {
		snap := l.Snapshot()
		l.ReportVisibility(vp.SentinelVisible(snap))
		vp.Render(l.Snapshot(), l.State())
	}

	if b.Auto > 0 {
		l.Wait()
		refresh()
		for i := 0; i < b.Auto; i++ {
			if ctx.Err() != nil {
				return nil
			}
			snap := l.Snapshot()
			if status := l.State().Status; status == feed.StatusFailed ||
				(status.Terminal() && vp.AtBottom(snap)) {
				break
			}
			vp.Scroll(b.Rows, snap)
			refresh()
			l.Wait()
			refresh()
			if b.Step > 0 {
				time.Sleep(b.Step)
			}
		}
		logger.Info().
			Int("items", l.State().Items).
			Str("status", l.State().Status.String()).
			Msg("Automatic browse finished")
		return nil
	}

	l.Wait()
	refresh()
	fmt.Fprintln(out, browseKeys)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			refresh()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			snap := l.Snapshot()
			switch line {
			case "", "j":
				vp.Scroll(1, snap)
			case "d":
				vp.Scroll(b.Rows, snap)
			case "k":
				vp.Scroll(-1, snap)
			case "u":
				vp.Scroll(-b.Rows, snap)
			case "r":
				if err := l.Retry(); err != nil && !errors.Is(err, loader.ErrNotFailed) {
					logger.Warn().Err(err).Msg("Retry rejected")
				}
			case "q":
				return nil
			default:
				fmt.Fprintln(out, browseKeys)
				continue
			}
			refresh()
		}
	}
}

// newFetcher builds the provider client, with the Redis response cache when enabled.
func newFetcher(ctx context.Context, cfg *config.Config) (*client.Client, func(), error) {
	clientCfg := client.DefaultConfig(cfg.Provider.BaseURL, cfg.Provider.UserAgent)
	clientCfg.Timeout = cfg.Provider.Timeout

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		clientCfg.Redis = rdb
	}

	c, err := client.New(clientCfg)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, nil, err
	}

	return c, func() {
		c.Close()
		if rdb != nil {
			rdb.Close()
		}
	}, nil
}
