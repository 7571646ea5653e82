package adapter

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"

	"shareaudit/internal/domain"
	"shareaudit/internal/logger"
)

// Console messages net view prints for the failures SMBLister can observe
const (
	netViewPathNotFound = "System error 53 has occurred.\r\n\r\nThe network path was not found.\r\n"
	netViewAccessDenied = "System error 5 has occurred.\r\n\r\nAccess is denied.\r\n"
)

// SMBCredentials is the NTLM identity for share listing. An empty User
// requests an anonymous session.
type SMBCredentials struct {
	User     string
	Domain   string
	Password string
}

// SMBLister lists shares natively over SMB2 and renders them in the net view
// console format, so the same parser handles both listers
type SMBLister struct {
	creds   SMBCredentials
	timeout time.Duration
	port    string
}

// NewSMBLister creates a native share lister
func NewSMBLister(creds SMBCredentials, timeout time.Duration) *SMBLister {
	return &SMBLister{creds: creds, timeout: timeout, port: "445"}
}

// ListShares connects to host:445, opens a session and enumerates share names
func (l *SMBLister) ListShares(ctx context.Context, host string) (domain.ShareListing, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	dialer := net.Dialer{Timeout: l.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, l.port))
	if err != nil {
		logger.Debug("smb dial failed", "host", host, "error", err)
		return domain.ShareListing{Output: netViewPathNotFound}, nil
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     l.creds.User,
			Password: l.creds.Password,
			Domain:   l.creds.Domain,
		},
	}
	session, err := d.DialContext(ctx, conn)
	if err != nil {
		logger.Debug("smb session failed", "host", host, "error", err)
		return domain.ShareListing{Output: netViewAccessDenied}, nil
	}
	defer session.Logoff()

	names, err := session.ListSharenames()
	if err != nil {
		logger.Debug("smb share enumeration failed", "host", host, "error", err)
		return domain.ShareListing{Output: netViewAccessDenied}, nil
	}

	return domain.ShareListing{ExitOK: true, Output: renderNetView(host, names)}, nil
}

// renderNetView formats share names as net view /all prints them.
// Share types are not reported by the share enumeration call, so IPC$ is
// IPC and everything else is Disk. Two spaces always follow the name so a
// name that fills its column, or holds single spaces, stays one column.
func renderNetView(host string, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shared resources at \\\\%s\r\n\r\n\r\n\r\n", host)
	fmt.Fprintf(&b, "%-13s  %-6s%-9s%s\r\n\r\n", "Share name", "Type", "Used as", "Comment")
	b.WriteString(strings.Repeat("-", 79) + "\r\n")
	for _, name := range names {
		typ := "Disk"
		if strings.EqualFold(name, "IPC$") {
			typ = "IPC"
		}
		fmt.Fprintf(&b, "%-13s  %-6s\r\n", name, typ)
	}
	b.WriteString("The command completed successfully.\r\n")
	return b.String()
}
