package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"petcare-client/internal/adapters/auth/jwtauth"
	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/mockapi"
	"petcare-client/internal/platform/config"
	"petcare-client/internal/platform/logger"
	"petcare-client/internal/session"
)

func newTestServer(t *testing.T) (string, mockapi.Demo) {
	t.Helper()
	store := mockapi.NewStore()
	demo, err := mockapi.Seed(store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	signer, err := jwtauth.NewSigner(jwtauth.Config{Secret: "cli-test"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	ts := httptest.NewServer(mockapi.NewRouter(mockapi.Options{Store: store, Verifier: signer, Issuer: signer}))
	t.Cleanup(ts.Close)
	return ts.URL, demo
}

func newTestApp(t *testing.T, baseURL string) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.Session.Backend = "memory"

	a, err := newApp(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	var out bytes.Buffer
	a.out = &out
	return a, &out
}

func runCmd(t *testing.T, a *app, out *bytes.Buffer, name string, args ...string) string {
	t.Helper()
	out.Reset()
	if err := commands[name].run(context.Background(), a, args); err != nil {
		t.Fatalf("%s %v: %v", name, args, err)
	}
	return out.String()
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (a *app) mustUser(t *testing.T) users.User {
	t.Helper()
	u, err := a.user()
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func TestCLI_RequiresLogin(t *testing.T) {
	url, _ := newTestServer(t)
	a, _ := newTestApp(t, url)

	err := commands["bookings"].run(context.Background(), a, nil)
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCLI_BookAndPay(t *testing.T) {
	url, demo := newTestServer(t)
	owner, oout := newTestApp(t, url)
	provider, pout := newTestApp(t, url)

	got := runCmd(t, owner, oout, "login", "-email", mockapi.DemoOwnerEmail, "-password", mockapi.DemoPassword)
	if !strings.Contains(got, mockapi.DemoOwnerEmail) {
		t.Fatalf("login output: %q", got)
	}
	runCmd(t, provider, pout, "login", "-email", mockapi.DemoProviderEmail, "-password", mockapi.DemoPassword)

	got = runCmd(t, owner, oout, "services", "-type", "walk")
	if !strings.Contains(got, "WALK") || strings.Contains(got, "BOARDING") {
		t.Fatalf("services output: %q", got)
	}

	got = runCmd(t, owner, oout, "quote", "-service", id(demo.Walk), "-pets", id(demo.Milo), "-start", "2026-11-02")
	if !strings.Contains(got, "5500.00") {
		t.Fatalf("quote output: %q", got)
	}

	got = runCmd(t, owner, oout, "book", "-service", id(demo.Walk), "-pets", id(demo.Milo), "-start", "2026-11-02", "-notes", "timbre roto")
	if !strings.Contains(got, "Pendiente") {
		t.Fatalf("book output: %q", got)
	}

	list, err := owner.bookings.List(context.Background(), owner.mustUser(t), bookings.ListFilter{})
	if err != nil || len(list) != 1 {
		t.Fatalf("bookings: %v %d", err, len(list))
	}
	bid := id(list[0].ID)

	if err := commands["pay"].run(context.Background(), owner, []string{bid}); err == nil {
		t.Fatalf("expected pay to fail while pending")
	}

	got = runCmd(t, provider, pout, "booking-action", bid, "confirm")
	if !strings.Contains(got, "Confirmada") {
		t.Fatalf("confirm output: %q", got)
	}

	got = runCmd(t, owner, oout, "pay", bid)
	if !strings.HasPrefix(got, "https://") {
		t.Fatalf("pay output: %q", got)
	}

	got = runCmd(t, provider, pout, "notifications", "-unread")
	if !strings.Contains(got, "BOOKING") || !strings.Contains(got, "PAYMENT") {
		t.Fatalf("notifications output: %q", got)
	}
	runCmd(t, provider, pout, "mark-all-read")
	got = runCmd(t, provider, pout, "badge")
	if strings.TrimSpace(got) != "0" {
		t.Fatalf("badge after mark-all-read: %q", got)
	}
}

func TestCLI_SwitchRoleReplacesSessionUser(t *testing.T) {
	url, _ := newTestServer(t)
	a, out := newTestApp(t, url)
	runCmd(t, a, out, "login", "-email", mockapi.DemoOwnerEmail, "-password", mockapi.DemoPassword)

	got := runCmd(t, a, out, "switch-role")
	if !strings.Contains(got, "PROVIDER") {
		t.Fatalf("switch-role output: %q", got)
	}
	if u := a.mustUser(t); !u.IsProvider() {
		t.Fatalf("session user role = %s", u.Role)
	}
}

func TestCLI_DeleteRoomAsksForConfirmation(t *testing.T) {
	url, demo := newTestServer(t)
	a, out := newTestApp(t, url)
	runCmd(t, a, out, "login", "-email", mockapi.DemoOwnerEmail, "-password", mockapi.DemoPassword)

	a.in = strings.NewReader("n\n")
	err := commands["delete-room"].run(context.Background(), a, []string{id(demo.Room)})
	if err == nil {
		t.Fatalf("expected deletion to be refused")
	}

	a.in = strings.NewReader("y\n")
	got := runCmd(t, a, out, "delete-room", id(demo.Room))
	if !strings.Contains(got, "deleted") {
		t.Fatalf("delete-room output: %q", got)
	}
}

func TestReviewFlag(t *testing.T) {
	var rf reviewFlag
	for _, v := range []string{"service=5", "provider=4:muy atento", "pet:12=3"} {
		if err := rf.Set(v); err != nil {
			t.Fatalf("Set(%q): %v", v, err)
		}
	}
	if len(rf.entries) != 3 {
		t.Fatalf("entries = %d", len(rf.entries))
	}
	if rf.entries[1].comment != "muy atento" || rf.entries[1].key.Kind != reviews.KindClientToProvider {
		t.Fatalf("provider entry = %+v", rf.entries[1])
	}
	if k := rf.entries[2].key; k.Kind != reviews.KindProviderToPet || k.Pet != 12 {
		t.Fatalf("pet entry = %+v", k)
	}

	for _, bad := range []string{"service", "pet=5", "wat=5", "service=x"} {
		if err := rf.Set(bad); err == nil {
			t.Fatalf("Set(%q) expected error", bad)
		}
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("pets", "1, 2,,3")
	if err != nil || len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("parseIDs = %v %v", ids, err)
	}
	if _, err := parseIDs("pets", "1,-2"); err == nil {
		t.Fatalf("expected error for negative id")
	}
}
