package xclient

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestOAuth1SigningDeterministic(t *testing.T) {
	c := NewHTTPClient(Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessSecret: "as"})
	c.nowFn = func() time.Time { return time.Unix(1500000000, 0) }
	c.nonceFn = func() string { return "fixednonce" }

	req, _ := http.NewRequest(http.MethodGet, "https://api.twitter.com/1.1/users/show.json?screen_name=alice", nil)
	c.oauth1Sign(req, map[string]string{"screen_name": "alice"})
	h1 := req.Header.Get("Authorization")

	req2, _ := http.NewRequest(http.MethodGet, "https://api.twitter.com/1.1/users/show.json?screen_name=alice", nil)
	c.oauth1Sign(req2, map[string]string{"screen_name": "alice"})
	h2 := req2.Header.Get("Authorization")

	if h1 == "" || h1 != h2 {
		t.Fatalf("expected stable Authorization header, got %q vs %q", h1, h2)
	}
	if !strings.HasPrefix(h1, "OAuth ") {
		t.Fatalf("unexpected header prefix: %q", h1)
	}
	for _, part := range []string{"oauth_consumer_key=\"ck\"", "oauth_token=\"at\"", "oauth_signature_method=\"HMAC-SHA1\"", "oauth_signature="} {
		if !strings.Contains(h1, part) {
			t.Fatalf("header missing %s: %q", part, h1)
		}
	}
}

func TestEncodeQuerySortsKeys(t *testing.T) {
	got := encodeQuery(map[string]string{"b": "2", "a": "1"})
	if got != "a=1&b=2" {
		t.Fatalf("encodeQuery = %q", got)
	}
}
