package redcore

import "testing"

func TestParseURI(t *testing.T) {
	cases := []struct {
		uri      string
		scheme   Scheme
		host     string
		password string
		database int
	}{
		{"redis://127.0.0.1:6379/3", SchemeTCP, "127.0.0.1:6379", "", 3},
		{"redis://127.0.0.1", SchemeTCP, "127.0.0.1:6379", "", 0},
		{"redis://secret@127.0.0.1:6380/1", SchemeTCP, "127.0.0.1:6380", "secret", 1},
		{"rediss://127.0.0.1:6379", SchemeTLS, "127.0.0.1:6379", "", 0},
		{"redis-socket:///var/run/redis.sock", SchemeUnix, "/var/run/redis.sock", "", 0},
	}

	for _, c := range cases {
		addr, err := ParseURI(c.uri)
		if err != nil {
			t.Fatalf("ParseURI(%q): %v", c.uri, err)
		}
		if addr.Scheme != c.scheme {
			t.Errorf("%q: scheme = %v, want %v", c.uri, addr.Scheme, c.scheme)
		}
		if addr.Host != c.host {
			t.Errorf("%q: host = %q, want %q", c.uri, addr.Host, c.host)
		}
		if addr.Password != c.password {
			t.Errorf("%q: password = %q, want %q", c.uri, addr.Password, c.password)
		}
		if addr.Database != c.database {
			t.Errorf("%q: database = %d, want %d", c.uri, addr.Database, c.database)
		}
	}
}

func TestParseURIRejectsUnknownScheme(t *testing.T) {
	if _, err := ParseURI("http://127.0.0.1"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestParseURIRejectsMissingHost(t *testing.T) {
	if _, err := ParseURI("redis:///0"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestParseSentinelURI(t *testing.T) {
	spec, err := ParseSentinelURI("redis-sentinel://mymaster@10.0.0.1:26379,10.0.0.2:26379/2")
	if err != nil {
		t.Fatalf("ParseSentinelURI: %v", err)
	}
	if spec.MasterID != "mymaster" {
		t.Errorf("MasterID = %q, want mymaster", spec.MasterID)
	}
	if len(spec.Addrs) != 2 {
		t.Fatalf("Addrs = %v, want 2 entries", spec.Addrs)
	}
	if spec.Database != 2 {
		t.Errorf("Database = %d, want 2", spec.Database)
	}
}

func TestParseSentinelURIRequiresMasterID(t *testing.T) {
	if _, err := ParseSentinelURI("redis-sentinel://10.0.0.1:26379"); err == nil {
		t.Fatal("expected error for missing master id")
	}
}
