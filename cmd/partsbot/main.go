package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"partsbot/internal"
	"partsbot/internal/app"
	"partsbot/internal/catalog"
	"partsbot/internal/config"
	"partsbot/internal/export"
	"partsbot/internal/fields"
	"partsbot/internal/logging"
	"partsbot/internal/refresher"
	"partsbot/internal/util"
	"partsbot/internal/webapp"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cleanup = cancel

	a, err := app.New(ctx, cfg)
	must(err)
	defer a.Close()
	cleanup = func() {
		_ = a.Close()
		cancel()
	}

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		if _, err := a.Catalog.EnsureFresh(ctx, true); err != nil {
			log.Error().Err(err).Msg("initial catalog load")
		}
		if err := a.Policy.Refresh(ctx, true); err != nil {
			log.Warn().Err(err).Msg("initial users load")
		}
		exportDir := ""
		if cfg.RefreshExport {
			exportDir = cfg.OutputDir
		}
		go func() {
			_ = refresher.NewService(a.Catalog, a.Policy, cfg.RefreshInterval(), exportDir).Run(ctx)
		}()
		if cfg.WebhookURL != "" {
			log.Info().Str("mini_app", cfg.MiniAppURL()).Msg("mini app url")
		}
		must(webapp.Run(ctx, cfg.HTTPAddr, webapp.NewRouter(a.Handler(), a.Metrics)))
	case "catalog:sync":
		count, err := a.Catalog.Reload(ctx)
		must(err)
		fmt.Printf("catalog sync complete: %d records\n", count)
	case "users:sync":
		must(a.Policy.Refresh(ctx, true))
		fmt.Println("users sync complete")
	case "search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "query")
		limit := fs.Int("limit", cfg.PageSize, "max results")
		_ = fs.Parse(os.Args[2:])
		res, err := a.Catalog.Search(ctx, *q)
		must(err)
		page, more := catalog.Page(res.Items, 0, *limit, cfg.PageSize)
		fmt.Printf("found %d (%s)\n", len(res.Items), res.Tier)
		for _, it := range page {
			fmt.Println()
			must(fields.WriteText(os.Stdout, it.Card))
		}
		if more {
			fmt.Printf("\n... %d more\n", len(res.Items)-len(page))
		}
	case "item":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		code := fs.String("code", "", "part code")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*code) == "" {
			must(fmt.Errorf("--code is required"))
		}
		it, err := a.Catalog.FindByCode(ctx, *code)
		must(err)
		must(fields.WriteText(os.Stdout, it.Card))
		img := it.Card.ImageURL
		if img == "" {
			img, _ = a.Catalog.FindImage(ctx, *code)
		}
		if img = a.Images.Resolve(ctx, img); img != "" {
			fmt.Printf("🖼 %s\n", img)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "query")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*q) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--q and --out are required"))
		}
		res, err := a.Catalog.Search(ctx, *q)
		must(err)
		if len(res.Items) == 0 {
			must(fmt.Errorf("nothing found for %q", *q))
		}
		must(export.SaveXLSX(res.Items, *out))
		fmt.Printf("exported %d rows to %s\n", len(res.Items), *out)
	case "issue":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		code := fs.String("code", "", "part code")
		qty := fs.String("qty", "", "quantity, comma or dot decimals")
		user := fs.Int64("user", 0, "telegram user id")
		name := fs.String("name", "", "display name")
		comment := fs.String("comment", "", "comment")
		_ = fs.Parse(os.Args[2:])
		row, err := a.Issues.Issue(ctx, internal.IssueRequest{
			UserID:  *user,
			Name:    *name,
			Code:    *code,
			Qty:     *qty,
			Comment: *comment,
		})
		must(err)
		fmt.Printf("issued id=%s code=%s qty=%s at %s\n", row.ID, row.Code, util.FormatNumber(row.Qty), row.CreatedAt)
	case "history":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "rows")
		user := fs.Int64("user", 0, "only this user id")
		out := fs.String("out", "", "write xlsx instead of printing")
		_ = fs.Parse(os.Args[2:])
		rows, err := a.Issues.Recent(*user, *limit)
		must(err)
		if *out != "" {
			must(export.SaveIssuesXLSX(rows, filepath.Clean(*out)))
			fmt.Printf("exported %d rows to %s\n", len(rows), *out)
			return
		}
		for _, r := range rows {
			fmt.Printf("%s\t%d\t%s\t%s\t%s\t%s\n", r.CreatedAt, r.UserID, r.UserName, r.Code, util.FormatNumber(r.Qty), r.Comment)
		}
	default:
		usage()
		cleanup()
		exit(1)
	}
}

func usage() {
	fmt.Println("usage: partsbot <command>")
	fmt.Println("commands:")
	fmt.Println("  serve")
	fmt.Println("  catalog:sync")
	fmt.Println("  users:sync")
	fmt.Println("  search --q=... [--limit=5]")
	fmt.Println("  item --code=UZ000664")
	fmt.Println("  export:xlsx --q=... --out=./out/search.xlsx")
	fmt.Println("  issue --code=... --qty=1,5 --user=123 [--name=...] [--comment=...]")
	fmt.Println("  history [--limit=20] [--user=123] [--out=./out/history.xlsx]")
}

// cleanup releases the app before must exits the process.
var (
	cleanup = func() {}
	exit    = os.Exit
)

func must(err error) {
	if err == nil {
		return
	}
	cleanup()
	if errors.Is(err, catalog.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "error: not found")
		exit(2)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	exit(1)
}
