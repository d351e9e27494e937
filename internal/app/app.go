package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"partsbot/internal/access"
	"partsbot/internal/catalog"
	"partsbot/internal/config"
	"partsbot/internal/connectors"
	imapconnector "partsbot/internal/connectors/imap"
	sheetsconnector "partsbot/internal/connectors/sheets"
	xlsxconnector "partsbot/internal/connectors/xlsx"
	"partsbot/internal/fields"
	"partsbot/internal/images"
	"partsbot/internal/issue"
	"partsbot/internal/metrics"
	"partsbot/internal/storage"
	"partsbot/internal/webapp"
)

// App holds the wired services shared by the commands.
type App struct {
	Cfg     config.Config
	DB      *storage.DB
	Metrics *metrics.Registry
	Catalog *catalog.Catalog
	Policy  *access.Policy
	Issues  *issue.Service
	Images  *images.Resolver
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	aliases, err := fields.LoadAliases(cfg.AliasesPath)
	if err != nil {
		return nil, err
	}

	records, users, sink, err := makeSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.NewRegistry()
	cat := catalog.New(records, db, aliases, cfg.DataTTL(), m)
	policy := access.NewPolicy(users, db, cfg.Admins, cfg.UsersTTL())
	issues := issue.NewService(cat, policy, db, sink, issue.Options{
		MaxQty:   cfg.MaxQty,
		Location: cfg.Location(),
		Metrics:  m,
	})
	resolver := images.NewResolver(time.Duration(cfg.ImageTimeoutMs)*time.Millisecond, float64(cfg.ImageRPS), m)
	return &App{
		Cfg:     cfg,
		DB:      db,
		Metrics: m,
		Catalog: cat,
		Policy:  policy,
		Issues:  issues,
		Images:  resolver,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func (a *App) Handler() *webapp.Handler {
	return &webapp.Handler{
		Catalog: a.Catalog,
		Policy:  a.Policy,
		Issues:  a.Issues,
		Images:  a.Images,
		Opts: webapp.Options{
			ServiceName: a.Cfg.ServiceName,
			PageSize:    a.Cfg.PageSize,
			MaxQty:      a.Cfg.MaxQty,
		},
	}
}

// makeSources picks the inventory connector from SOURCE. The mailbox source
// has no users or history sheet of its own and borrows them from Google
// Sheets when a spreadsheet is configured.
func makeSources(ctx context.Context, cfg config.Config) (connectors.RecordSource, connectors.UserSource, connectors.HistorySink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "sheets", "":
		c, err := sheetsconnector.NewConnector(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return c, c, c, nil
	case "xlsx":
		c := xlsxconnector.NewConnector(cfg.XLSXPath, cfg.SAPSheetName, cfg.UsersSheetName, cfg.HistorySheetName)
		return c, c, c, nil
	case "imap":
		mail, err := imapconnector.NewConnector(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.SpreadsheetURL == "" && cfg.SpreadsheetID == "" {
			return mail, nil, nil, nil
		}
		sh, err := sheetsconnector.NewConnector(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return mail, sh, sh, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported source: %s", cfg.Source)
	}
}
