package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
)

// securityMetrics counts rejected and flagged requests; /readyz reports them.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// Only loopback and private ranges may set X-Forwarded-For or X-Real-IP.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the forwarded client when
// the peer is a trusted proxy and the header holds a valid address.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !isTrustedProxy(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

// scanRule names one pattern of scanner traffic.
type scanRule struct {
	name  string
	match func(r *http.Request) bool
}

var suspiciousFragments = []string{
	"../", "..\\", ".env", ".git", ".ssh", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", "etc/passwd", "cmd.exe",
	"<script", "javascript:", "eval(", "union select",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab", "scanner",
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

var scanRules = []scanRule{
	{"path", func(r *http.Request) bool {
		return containsAny(strings.ToLower(r.URL.Path), suspiciousFragments)
	}},
	{"query", func(r *http.Request) bool {
		return containsAny(strings.ToLower(r.URL.RawQuery), suspiciousFragments)
	}},
	{"user_agent", func(r *http.Request) bool {
		return containsAny(strings.ToLower(r.Header.Get("User-Agent")), scannerAgents)
	}},
	{"method", func(r *http.Request) bool {
		switch r.Method {
		case "TRACE", "TRACK", "DEBUG", "CONNECT":
			return true
		}
		return false
	}},
	{"url_length", func(r *http.Request) bool {
		return len(r.URL.String()) > 2048
	}},
	{"proxy_chain", func(r *http.Request) bool {
		return strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5
	}},
}

// detectSuspiciousRequest returns the first scan rule r matches. Flagged
// requests are logged and counted, not rejected.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) (string, bool) {
	for _, rule := range scanRules {
		if rule.match(r) {
			if metrics != nil {
				atomic.AddInt64(&metrics.suspiciousRequests, 1)
			}
			return rule.name, true
		}
	}
	return "", false
}
