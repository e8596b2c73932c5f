package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// voteAuthenticator returns a fixed result and counts invocations.
type voteAuthenticator struct {
	result Result
	calls  int
}

func (v *voteAuthenticator) Authenticate(context.Context, *http.Request) Result {
	v.calls++
	return v.result
}

func testRequest() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
}

func TestChainStopsOnFirstYes(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "alice"}}}
	second := &voteAuthenticator{result: Result{Decision: No, Err: ErrInvalidKey}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), testRequest())

	if result.Decision != Yes || result.Identity.Subject != "alice" {
		t.Errorf("result = %+v", result)
	}
	if second.calls != 0 {
		t.Error("chain continued past a Yes vote")
	}
}

func TestChainStopsOnFirstNo(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: No, Err: ErrInvalidKey}}
	second := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "bob"}}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), testRequest())

	if result.Decision != No {
		t.Errorf("decision = %v, want No", result.Decision)
	}
	if !errors.Is(result.Err, ErrInvalidKey) {
		t.Errorf("err = %v", result.Err)
	}
	if second.calls != 0 {
		t.Error("chain continued past a No vote")
	}
}

func TestChainContinuesOnAbstain(t *testing.T) {
	first := &voteAuthenticator{result: Result{Decision: Abstain}}
	second := &voteAuthenticator{result: Result{Decision: Yes, Identity: &Identity{Subject: "carol"}}}
	chain := &Chain{Authenticators: []Authenticator{first, second}}

	result := chain.Authenticate(context.Background(), testRequest())

	if result.Decision != Yes || result.Identity.Subject != "carol" {
		t.Errorf("result = %+v", result)
	}
}

func TestChainAllAbstainUsesDefault(t *testing.T) {
	abstainer := &voteAuthenticator{result: Result{Decision: Abstain}}

	open := &Chain{Authenticators: []Authenticator{abstainer}, DefaultDecision: Yes}
	result := open.Authenticate(context.Background(), testRequest())
	if result.Decision != Yes || result.Identity.Subject != "anonymous" {
		t.Errorf("open chain result = %+v", result)
	}

	closed := &Chain{Authenticators: []Authenticator{abstainer}, DefaultDecision: No}
	result = closed.Authenticate(context.Background(), testRequest())
	if result.Decision != No {
		t.Errorf("closed chain decision = %v, want No", result.Decision)
	}
	if !errors.Is(result.Err, ErrMissingCredentials) {
		t.Errorf("closed chain err = %v", result.Err)
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	id := &Identity{Subject: "dave", ServiceTier: "pro"}
	ctx := SetIdentity(context.Background(), id)

	if got := IdentityFromContext(ctx); got != id {
		t.Errorf("IdentityFromContext = %+v", got)
	}
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("empty context identity = %+v", got)
	}
}

func TestInProcessLimiterEnforcesTierLimit(t *testing.T) {
	limiter := NewInProcessLimiter(map[string]TierConfig{
		"free": {RequestsPerMinute: 2},
	}, 100)
	id := &Identity{Subject: "eve", ServiceTier: "free"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := limiter.Allow(ctx, id); err != nil {
			t.Fatalf("request %d rejected: %v", i+1, err)
		}
	}
	if err := limiter.Allow(ctx, id); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("third request err = %v, want ErrTooManyRequests", err)
	}
}

func TestInProcessLimiterZeroMeansUnlimited(t *testing.T) {
	limiter := NewInProcessLimiter(map[string]TierConfig{
		"internal": {RequestsPerMinute: 0},
	}, 1)
	id := &Identity{Subject: "svc", ServiceTier: "internal"}

	for i := 0; i < 10; i++ {
		if err := limiter.Allow(context.Background(), id); err != nil {
			t.Fatalf("request %d rejected: %v", i+1, err)
		}
	}
}

func TestInProcessLimiterIsolatesSubjects(t *testing.T) {
	limiter := NewInProcessLimiter(nil, 1)
	ctx := context.Background()

	if err := limiter.Allow(ctx, &Identity{Subject: "a"}); err != nil {
		t.Fatalf("first subject rejected: %v", err)
	}
	if err := limiter.Allow(ctx, &Identity{Subject: "b"}); err != nil {
		t.Errorf("second subject rejected: %v", err)
	}
}
