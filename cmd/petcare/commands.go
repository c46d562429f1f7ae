package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"petcare-client/internal/domain/chat"
	"petcare-client/internal/platform/httpclient"
)

type command struct {
	help string
	// anonymous: no hace falta restaurar la sesión antes de correrlo.
	anonymous bool
	run       func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":       {help: "log in with email and password", anonymous: true, run: cmdLogin},
	"logout":      {help: "drop the persisted session", run: cmdLogout},
	"whoami":      {help: "show the logged in user", run: cmdWhoami},
	"register":    {help: "create an account", anonymous: true, run: cmdRegister},
	"profile":     {help: "update name, phone or avatar", run: cmdProfile},
	"switch-role": {help: "switch between OWNER and PROVIDER", run: cmdSwitchRole},

	"services":       {help: "search the service catalog", run: cmdServices},
	"create-service": {help: "create a service (providers)", run: cmdCreateService},
	"publish":        {help: "activate one of your services", run: cmdPublish},
	"unpublish":      {help: "deactivate one of your services", run: cmdUnpublish},
	"certifications": {help: "list certifications", run: cmdCertifications},
	"certify":        {help: "submit a certification document", run: cmdCertify},

	"pets":     {help: "list your pets", run: cmdPets},
	"add-pet":  {help: "register a pet", run: cmdAddPet},
	"link-pet": {help: "share a pet with another owner", run: cmdLinkPet},
	"species":  {help: "list species", run: cmdSpecies},
	"breeds":   {help: "list breeds of a species", run: cmdBreeds},

	"quote":           {help: "price a booking without creating it", run: cmdQuote},
	"book":            {help: "quote and create a booking", run: cmdBook},
	"bookings":        {help: "list bookings for the active role", run: cmdBookings},
	"booking-action":  {help: "confirm, reject, start, complete or cancel a booking", run: cmdBookingAction},
	"pay":             {help: "get the payment link of a confirmed booking", run: cmdPay},
	"export-bookings": {help: "export bookings to an xlsx file", run: cmdExportBookings},
	"review":          {help: "review a completed booking", run: cmdReview},
	"reviews":         {help: "list reviews", run: cmdReviews},

	"rooms":       {help: "list chat rooms", run: cmdRooms},
	"chat":        {help: "read, watch or send messages in a room", run: cmdChat},
	"delete-room": {help: "delete a chat room", run: cmdDeleteRoom},
	"ticket":      {help: "open a support ticket", run: cmdTicket},
	"upload":      {help: "upload a file to the media host", run: cmdUpload},

	"notifications": {help: "list notifications", run: cmdNotifications},
	"mark-read":     {help: "mark a notification as read", run: cmdMarkRead},
	"mark-all-read": {help: "mark every notification as read", run: cmdMarkAllRead},
	"badge":         {help: "watch the unread notifications count", run: cmdBadge},
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// argID lee el argumento posicional i como id positivo.
func argID(fs *flag.FlagSet, i int, name string) (int64, error) {
	raw := fs.Arg(i)
	if raw == "" {
		return 0, httpclient.Invalid(name, "required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, httpclient.Invalid(name, "must be a positive id")
	}
	return id, nil
}

// parseIDs acepta "1,2,3".
func parseIDs(field, raw string) ([]int64, error) {
	var out []int64
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, httpclient.Invalid(field, fmt.Sprintf("invalid id %q", part))
		}
		out = append(out, id)
	}
	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// stdinConfirmer pregunta por la terminal; cualquier cosa que no sea y/yes es no.
func stdinConfirmer(in io.Reader, out io.Writer) chat.Confirmer {
	return chat.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "s", "si", "sí":
			return true, nil
		}
		return false, nil
	})
}
