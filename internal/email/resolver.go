package email

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const imapsPort = 993

// knownIMAPServers short-circuits resolution for providers whose IMAP host
// does not follow the imap.<domain> convention or is worth pinning.
var knownIMAPServers = map[string]string{
	"gmail.com":      "imap.gmail.com:993",
	"googlemail.com": "imap.gmail.com:993",
	"outlook.com":    "outlook.office365.com:993",
	"hotmail.com":    "outlook.office365.com:993",
	"live.com":       "outlook.office365.com:993",
	"msn.com":        "outlook.office365.com:993",
	"yahoo.com":      "imap.mail.yahoo.com:993",
	"yahoo.co.uk":    "imap.mail.yahoo.com:993",
	"qq.com":         "imap.qq.com:993",
	"foxmail.com":    "imap.qq.com:993",
	"163.com":        "imap.163.com:993",
	"126.com":        "imap.126.com:993",
	"yeah.net":       "imap.yeah.net:993",
	"sina.com":       "imap.sina.com:993",
	"sohu.com":       "imap.sohu.com:993",
	"aliyun.com":     "imap.aliyun.com:993",
	"icloud.com":     "imap.mail.me.com:993",
	"me.com":         "imap.mail.me.com:993",
	"mac.com":        "imap.mail.me.com:993",
	"aol.com":        "imap.aol.com:993",
	"zoho.com":       "imap.zoho.com:993",
	"protonmail.com": "127.0.0.1:1143", // ProtonMail Bridge
	"proton.me":      "127.0.0.1:1143",
	"fastmail.com":   "imap.fastmail.com:993",
	"gmx.com":        "imap.gmx.com:993",
	"gmx.de":         "imap.gmx.net:993",
}

// ResolveIMAPServer guesses the IMAP host:port for an email address: known
// providers first, then conventional host names probed over TCP, then the
// domain's MX records. The unprobed imap.<domain> guess is returned as a
// last resort so the caller's connection test produces the real error.
func ResolveIMAPServer(email string) (string, error) {
	domain := GetDomainFromEmail(email)
	if domain == "" {
		return "", fmt.Errorf("invalid email format")
	}

	if server, ok := knownIMAPServers[domain]; ok {
		return server, nil
	}

	for _, host := range []string{"imap." + domain, "mail." + domain, domain} {
		if probeIMAP(host) {
			return fmt.Sprintf("%s:%d", host, imapsPort), nil
		}
	}

	if server, err := resolveViaMX(domain); err == nil {
		return server, nil
	}

	return fmt.Sprintf("imap.%s:%d", domain, imapsPort), nil
}

// probeIMAP reports whether the host accepts TCP connections on the IMAPS
// port.
func probeIMAP(host string) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, imapsPort), 3*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// resolveViaMX derives an IMAP host from the domain's primary MX record,
// e.g. mx.example.com -> imap.example.com.
func resolveViaMX(domain string) (string, error) {
	mxRecords, err := net.LookupMX(domain)
	if err != nil || len(mxRecords) == 0 {
		return "", fmt.Errorf("no MX records found")
	}

	mxHost := strings.TrimSuffix(mxRecords[0].Host, ".")
	_, baseDomain, found := strings.Cut(mxHost, ".")
	if !found {
		return "", fmt.Errorf("could not determine IMAP server")
	}

	for _, host := range []string{"imap." + baseDomain, "mail." + baseDomain} {
		if probeIMAP(host) {
			return fmt.Sprintf("%s:%d", host, imapsPort), nil
		}
	}

	return "", fmt.Errorf("could not determine IMAP server")
}

// GetDomainFromEmail returns the lowercased domain part of an address, or
// "" when the address is malformed.
func GetDomainFromEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}
