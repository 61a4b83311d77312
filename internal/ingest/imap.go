package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// IMAPImporter reads recent messages from a mailbox's INBOX.
type IMAPImporter struct {
	cfg      model.IMAPConfig
	password string
	log      *zap.Logger
}

// NewIMAPImporter creates an importer for cfg. The password comes from
// the credential store.
func NewIMAPImporter(cfg model.IMAPConfig, password string, log *zap.Logger) *IMAPImporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &IMAPImporter{cfg: cfg, password: password, log: log.Named("imap")}
}

// connect dials the server and authenticates. The caller must log out.
func (i *IMAPImporter) connect() (*imapclient.Client, error) {
	addr := i.cfg.Host + ":" + i.cfg.Port

	var client *imapclient.Client
	var err error
	if i.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(i.cfg.Username, i.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", i.cfg.Username, err)
	}
	return client, nil
}

// Fetch returns up to cfg.Limit of the most recent INBOX messages from
// the last since duration, oldest first.
func (i *IMAPImporter) Fetch(ctx context.Context, since time.Duration) ([]identity.RawEmail, error) {
	if i.cfg.Host == "" || i.cfg.Username == "" {
		return nil, fmt.Errorf("%w: IMAP host and username are required", ErrUnsupportedFile)
	}

	client, err := i.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	criteria := &imap.SearchCriteria{}
	if since > 0 {
		criteria.Since = time.Now().Add(-since)
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit := i.cfg.Limit; limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	var emails []identity.RawEmail
	for {
		if ctx.Err() != nil {
			return emails, ctx.Err()
		}
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			i.log.Warn("skipping message", zap.Error(err))
			continue
		}
		emails = append(emails, fromFetched(buf.Envelope, buf.FindBodySection(bodySection)))
	}

	if err := fetchCmd.Close(); err != nil {
		return emails, fmt.Errorf("fetching messages: %w", err)
	}
	i.log.Info("imported messages", zap.Int("count", len(emails)))
	return emails, nil
}

// fromFetched builds an upload entry from a fetched envelope and its raw
// body. Envelope fields win over headers parsed from the body.
func fromFetched(env *imap.Envelope, raw []byte) identity.RawEmail {
	var email identity.RawEmail
	if raw != nil {
		if parsed, err := ParseMessage(bytes.NewReader(raw)); err == nil {
			email = parsed
		}
	}
	if env == nil {
		return email
	}

	if env.MessageID != "" {
		email.ID = env.MessageID
	}
	if env.Subject != "" {
		email.Subject = env.Subject
	}
	if len(env.From) > 0 {
		email.Sender = env.From[0].Addr()
	}
	if !env.Date.IsZero() {
		email.Timestamp = env.Date.UTC().Format(time.RFC3339)
	}
	return email
}
