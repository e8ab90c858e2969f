package domainrep

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// whoisClient resolves a domain's registration age. No library in the
// retrieved example pack wraps the WHOIS protocol, so this is a minimal
// hand-rolled client over the plain-text port-43 protocol.
type whoisClient interface {
	DomainAgeDays(ctx context.Context, domain string) (int, error)
}

type realWhoisClient struct{}

const whoisServer = "whois.iana.org:43"

var creationDatePrefixes = []string{
	"creation date:",
	"created:",
	"created on:",
	"domain registration date:",
}

var whoisDateLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

func (realWhoisClient) DomainAgeDays(ctx context.Context, domain string) (int, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", whoisServer)
	if err != nil {
		return 0, fmt.Errorf("whois dial failed: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(domain + "\r\n")); err != nil {
		return 0, fmt.Errorf("whois write failed: %w", err)
	}

	created, err := parseCreationDate(bufio.NewScanner(conn))
	if err != nil {
		return 0, err
	}

	days := int(time.Since(created).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, nil
}

func parseCreationDate(scanner *bufio.Scanner) (time.Time, error) {
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		for _, prefix := range creationDatePrefixes {
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			value := strings.TrimSpace(line[len(prefix):])
			for _, layout := range whoisDateLayouts {
				if t, err := time.Parse(layout, value); err == nil {
					return t, nil
				}
			}
		}
	}
	return time.Time{}, fmt.Errorf("whois response had no parseable creation date")
}
