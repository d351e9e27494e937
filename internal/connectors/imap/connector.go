package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"partsbot/internal"
	"partsbot/internal/config"
	xlsxconnector "partsbot/internal/connectors/xlsx"
)

var ErrNoStockSheet = errors.New("no stock workbook found in mailbox")

// Connector loads the inventory from the newest message in a mailbox that
// carries an .xlsx attachment. Suppliers that cannot share a spreadsheet mail
// their stock export instead.
type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	mailbox  string
	max      int
	sheet    string
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	max := cfg.IMAPFetchMax
	if max <= 0 {
		max = 10
	}
	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  cfg.IMAPMailbox,
		max:      max,
		sheet:    cfg.SAPSheetName,
	}, nil
}

func (c *Connector) Name() string { return "imap" }

func (c *Connector) LoadRecords(ctx context.Context) ([]internal.Record, error) {
	raws, err := c.fetchRecent()
	if err != nil {
		return nil, err
	}
	// newest first
	for i := len(raws) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, name, err := RecordsFromMessage(raws[i], c.sheet)
		if errors.Is(err, ErrNoStockSheet) {
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("attachment", name).Msg("skip unreadable stock attachment")
			continue
		}
		log.Info().Str("attachment", name).Int("records", len(records)).Msg("stock sheet loaded from mailbox")
		return records, nil
	}
	return nil, ErrNoStockSheet
}

// RecordsFromMessage parses a raw RFC 5322 message and reads the first .xlsx
// attachment. It returns the attachment name alongside the records.
func RecordsFromMessage(raw []byte, sheet string) ([]internal.Record, string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}

	parts := append([]*enmime.Part{}, env.Attachments...)
	parts = append(parts, env.Inlines...)
	for _, att := range parts {
		name := strings.TrimSpace(att.FileName)
		if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			continue
		}
		f, err := excelize.OpenReader(bytes.NewReader(att.Content))
		if err != nil {
			return nil, name, err
		}
		records, err := xlsxconnector.ReadRecords(f, sheet)
		_ = f.Close()
		return records, name, err
	}
	return nil, "", ErrNoStockSheet
}

func (c *Connector) fetchRecent() ([][]byte, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var client *imapclient.Client
	var err error
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if err := client.Login(c.user, c.password); err != nil {
		return nil, err
	}

	status, err := client.Select(c.mailbox, true)
	if err != nil {
		return nil, err
	}
	if status.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if status.Messages > uint32(c.max) {
		from = status.Messages - uint32(c.max) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, status.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, c.max)
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	out := make([][]byte, 0, c.max)
	for msg := range messages {
		if msg == nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}

	if err := <-fetchDone; err != nil {
		return nil, err
	}
	return out, nil
}
