package video

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestGetToken(t *testing.T) {
	key := []byte("test-signing-key")
	p := NewLocalProvider(key, time.Hour)
	p.now = func() time.Time { return time.Unix(1_000_000, 0) }

	token, err := p.GetToken(context.Background(), "town-1", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(token, ".")
	testutil.AssertEqual(t, "parts", len(parts), 2)

	grant, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decoding grant: %v", err)
	}
	testutil.AssertEqual(t, "grant", string(grant), "town-1:alice:1003600")

	mac := hmac.New(sha256.New, key)
	mac.Write(grant)
	expSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	testutil.AssertEqual(t, "signature", parts[1], expSig)
}

func TestGetTokenScopesUsers(t *testing.T) {
	p := NewLocalProvider([]byte("key"), time.Hour)
	p.now = func() time.Time { return time.Unix(1_000_000, 0) }

	alice, _ := p.GetToken(context.Background(), "town-1", "alice")
	bob, _ := p.GetToken(context.Background(), "town-1", "bob")
	elsewhere, _ := p.GetToken(context.Background(), "town-2", "alice")

	if alice == bob {
		t.Error("expected distinct tokens per user")
	}
	if alice == elsewhere {
		t.Error("expected distinct tokens per town")
	}
}

func TestGetTokenRequiresKey(t *testing.T) {
	p := NewLocalProvider(nil, time.Hour)
	_, err := p.GetToken(context.Background(), "town-1", "alice")
	testutil.AssertErrorContains(t, err, "no signing key")
}
