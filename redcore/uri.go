package redcore

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Scheme identifies the transport an Address names.
type Scheme uint8

const (
	SchemeTCP Scheme = iota
	SchemeTLS
	SchemeUnix
)

// Address is the resolved target of an Endpoint, as parsed from one of
// three URI forms: redis://[password@]host[:port][/db], rediss://...
// for TLS, and redis-socket:///path for a Unix domain socket.
type Address struct {
	Scheme   Scheme
	Host     string // host:port for TCP/TLS, filesystem path for Unix
	Password string
	Database int
}

// ParseURI parses one of the three endpoint URI forms. It never dials;
// transport construction is the caller's job (transport.NewTCP, NewTLS,
// NewUDS).
func ParseURI(raw string) (*Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, validationErrorf("parse uri %q: %v", raw, err)
	}

	addr := &Address{}
	switch u.Scheme {
	case "redis":
		addr.Scheme = SchemeTCP
	case "rediss":
		addr.Scheme = SchemeTLS
	case "redis-socket":
		addr.Scheme = SchemeUnix
	default:
		return nil, validationErrorf("unsupported uri scheme %q", u.Scheme)
	}

	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			addr.Password = pw
		} else if u.User.Username() != "" {
			addr.Password = u.User.Username()
		}
	}

	if addr.Scheme == SchemeUnix {
		addr.Host = u.Path
		if addr.Host == "" {
			return nil, validationErrorf("redis-socket uri %q has no path", raw)
		}
	} else {
		host := u.Host
		if host == "" {
			return nil, validationErrorf("uri %q has no host", raw)
		}
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, "6379")
		}
		addr.Host = host
	}

	if db := strings.TrimPrefix(u.Path, "/"); db != "" && addr.Scheme != SchemeUnix {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, validationErrorf("uri %q has non-numeric database %q", raw, db)
		}
		addr.Database = n
	}

	return addr, nil
}

// SentinelSpec is the result of parsing a redis-sentinel:// URI. redcore
// parses this form but performs no master discovery or failover
// orchestration: callers that want Sentinel support resolve MasterID
// against Addrs themselves (e.g. with the SENTINEL get-master-addr-by-name
// command against each address in turn) and then build a plain Address
// from the result.
type SentinelSpec struct {
	MasterID string
	Addrs    []string
	Database int
}

// ParseSentinelURI parses redis-sentinel://master-id@host1:port,host2:port/db.
func ParseSentinelURI(raw string) (*SentinelSpec, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, validationErrorf("parse sentinel uri %q: %v", raw, err)
	}
	if u.Scheme != "redis-sentinel" {
		return nil, validationErrorf("unsupported sentinel uri scheme %q", u.Scheme)
	}

	spec := &SentinelSpec{}
	if u.User != nil {
		spec.MasterID = u.User.Username()
	}
	if spec.MasterID == "" {
		return nil, validationErrorf("sentinel uri %q has no master id", raw)
	}

	for _, host := range strings.Split(u.Host, ",") {
		if host == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, "26379")
		}
		spec.Addrs = append(spec.Addrs, host)
	}
	if len(spec.Addrs) == 0 {
		return nil, validationErrorf("sentinel uri %q has no sentinel addresses", raw)
	}

	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, validationErrorf("sentinel uri %q has non-numeric database %q", raw, db)
		}
		spec.Database = n
	}

	return spec, nil
}
