package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"/metrics":                    "/metrics",
		"/auth/login":                 "/auth/login",
		"/users/exists":               "/users/exists",
		"/users/01HX2K9A":             "/users/:id",
		"/users/email/a%40x.com":      "/users/email/:email",
		"/auth/validate?verbose=true": "/auth/validate",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
