package auth

import (
	"context"
	"testing"
)

func TestClaimsContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry claims")
	}

	ctx := ContextWithClaims(context.Background(), &Claims{UserID: 7})
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.UserID != 7 {
		t.Fatalf("unexpected claims: %+v ok=%v", c, ok)
	}

	if _, ok := ClaimsFromContext(ContextWithClaims(context.Background(), nil)); ok {
		t.Fatal("nil claims must read as absent")
	}
}
