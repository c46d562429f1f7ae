package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/platform/httpclient"
)

type flowFlags struct {
	service int64
	pets    string
	start   string
	end     string
	notes   string
}

func (ff *flowFlags) register(fs *flag.FlagSet) {
	fs.Int64Var(&ff.service, "service", 0, "service id")
	fs.StringVar(&ff.pets, "pets", "", "comma separated pet ids")
	fs.StringVar(&ff.start, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&ff.end, "end", "", "end date for per-night services (YYYY-MM-DD)")
	fs.StringVar(&ff.notes, "notes", "", "notes for the provider")
}

// flow arma el flujo de reserva y pide el quote.
func (ff *flowFlags) flow(ctx context.Context, a *app) (*bookings.Flow, bookings.Quote, error) {
	if ff.service <= 0 {
		return nil, bookings.Quote{}, httpclient.Invalid("service", "required")
	}
	svc, err := a.services.Get(ctx, ff.service)
	if err != nil {
		return nil, bookings.Quote{}, err
	}
	petIDs, err := parseIDs("pets", ff.pets)
	if err != nil {
		return nil, bookings.Quote{}, err
	}
	start, err := bookings.ParseDate(ff.start)
	if err != nil {
		return nil, bookings.Quote{}, httpclient.Invalid("start_date", err.Error())
	}
	end := start
	if ff.end != "" {
		if end, err = bookings.ParseDate(ff.end); err != nil {
			return nil, bookings.Quote{}, httpclient.Invalid("end_date", err.Error())
		}
	}

	f := bookings.NewFlow(a.bookings, svc)
	f.SetPets(petIDs)
	f.SetDates(start, end)
	f.SetNotes(ff.notes)

	q, err := f.RefreshQuote(ctx)
	if err != nil {
		return nil, bookings.Quote{}, err
	}
	return f, q, nil
}

func printQuote(a *app, q bookings.Quote) {
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintf(tw, "units\t%d\n", q.Quantity)
	fmt.Fprintf(tw, "base price\t%s\n", q.BasePrice)
	fmt.Fprintf(tw, "platform fee (%.1f%%)\t%s\n", q.RatePercentage, q.PlatformFee)
	fmt.Fprintf(tw, "total\t%s\n", q.Total)
}

func cmdQuote(ctx context.Context, a *app, args []string) error {
	fs := newFlags("quote")
	var ff flowFlags
	ff.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	_, q, err := ff.flow(ctx, a)
	if err != nil {
		return err
	}
	printQuote(a, q)
	return nil
}

func cmdBook(ctx context.Context, a *app, args []string) error {
	fs := newFlags("book")
	var ff flowFlags
	ff.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	f, q, err := ff.flow(ctx, a)
	if err != nil {
		return err
	}
	printQuote(a, q)

	b, err := f.Submit(ctx)
	if err != nil {
		return err
	}
	a.printf("booking %d created (%s)\n", b.ID, b.Status.Label())
	return nil
}

func cmdBookings(ctx context.Context, a *app, args []string) error {
	fs := newFlags("bookings")
	status := fs.String("status", "", "only this status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	st := bookings.Status(strings.ToUpper(strings.TrimSpace(*status)))
	if st != "" && !st.Valid() {
		return httpclient.Invalid("status", fmt.Sprintf("unknown status %q", *status))
	}

	list, err := a.bookings.List(ctx, u, bookings.ListFilter{Status: st})
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tSERVICE\tPETS\tFROM\tTO\tSTATUS\tTOTAL\tACTIONS")
	for _, b := range list {
		var acts []string
		for _, act := range bookings.AvailableActions(b, u.ID) {
			acts = append(acts, string(act))
		}
		if bookings.CanPay(b, u.ID) {
			acts = append(acts, "pay")
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Service, joinIDs(b.Pets), b.StartDate, b.EndDate,
			b.Status.Label(), b.TotalPrice, strings.Join(acts, ","))
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func cmdBookingAction(ctx context.Context, a *app, args []string) error {
	fs := newFlags("booking-action")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "booking")
	if err != nil {
		return err
	}
	act, ok := bookings.ParseAction(fs.Arg(1))
	if !ok {
		return httpclient.Invalid("action", "one of confirm, reject, start, complete, cancel")
	}
	u, err := a.user()
	if err != nil {
		return err
	}

	b, err := a.bookings.Apply(ctx, id, u.ID, act)
	if err != nil {
		return err
	}
	a.printf("booking %d is now %s\n", b.ID, b.Status.Label())
	return nil
}

func cmdPay(ctx context.Context, a *app, args []string) error {
	fs := newFlags("pay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "booking")
	if err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	b, err := a.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	if !bookings.CanPay(b, u.ID) {
		return fmt.Errorf("booking %d cannot be paid by you while %s", b.ID, b.Status.Label())
	}

	link, err := a.bookings.PaymentLink(ctx, b.ID)
	if err != nil {
		return err
	}
	a.printf("%s\n", link)
	return nil
}

func cmdExportBookings(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export-bookings")
	out := fs.String("o", "bookings.xlsx", "output file")
	status := fs.String("status", "", "only this status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}

	list, err := a.bookings.List(ctx, u, bookings.ListFilter{Status: bookings.Status(strings.ToUpper(*status))})
	if err != nil {
		return err
	}
	names := a.exportNames(ctx, list)

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := bookings.Export(f, list, names); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.printf("%d bookings written to %s\n", len(list), *out)
	return nil
}

// exportNames junta los nombres que se puedan resolver; lo que falle queda
// como "#id" en la planilla.
func (a *app) exportNames(ctx context.Context, list []bookings.Booking) bookings.Names {
	names := bookings.Names{
		Services: map[int64]string{},
		Users:    map[int64]string{},
		Pets:     map[int64]string{},
	}
	if svcs, err := a.services.List(ctx, nil); err == nil {
		for _, s := range svcs {
			names.Services[s.ID] = s.Name
		}
	}
	if ps, err := a.pets.List(ctx); err == nil {
		for _, p := range ps {
			names.Pets[p.ID] = p.Name
		}
	}
	for _, b := range list {
		for _, id := range []int64{b.Owner, b.Provider} {
			if _, ok := names.Users[id]; ok {
				continue
			}
			u, err := a.users.Get(ctx, id)
			if err != nil {
				a.log.Debug("export: user lookup failed", map[string]any{"user_id": id, "err": err})
				names.Users[id] = ""
				continue
			}
			names.Users[id] = u.FullName()
		}
	}
	return names
}

// reviewFlag acepta -r service=5 -r provider=4:"muy bien" -r client=5 -r pet:12=5.
type reviewFlag struct {
	entries []reviewEntry
}

type reviewEntry struct {
	key     reviews.KindKey
	rating  int
	comment string
}

func (r *reviewFlag) String() string { return "" }

func (r *reviewFlag) Set(v string) error {
	target, rest, ok := strings.Cut(v, "=")
	if !ok {
		return errors.New("expected TARGET=RATING[:comment]")
	}
	rawRating, comment, _ := strings.Cut(rest, ":")
	rating, err := strconv.Atoi(strings.TrimSpace(rawRating))
	if err != nil {
		return fmt.Errorf("rating %q is not a number", rawRating)
	}

	var key reviews.KindKey
	name, petID, hasPet := strings.Cut(strings.ToLower(strings.TrimSpace(target)), ":")
	switch name {
	case "service":
		key.Kind = reviews.KindClientToService
	case "provider":
		key.Kind = reviews.KindClientToProvider
	case "client", "owner":
		key.Kind = reviews.KindProviderToClient
	case "pet":
		if !hasPet {
			return errors.New("pet reviews need the pet id: pet:<id>=RATING")
		}
		id, err := strconv.ParseInt(petID, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid pet id %q", petID)
		}
		key = reviews.KindKey{Kind: reviews.KindProviderToPet, Pet: id}
	default:
		return fmt.Errorf("unknown review target %q", target)
	}
	r.entries = append(r.entries, reviewEntry{key: key, rating: rating, comment: strings.TrimSpace(comment)})
	return nil
}

func cmdReview(ctx context.Context, a *app, args []string) error {
	fs := newFlags("review")
	var rf reviewFlag
	fs.Var(&rf, "r", "TARGET=RATING[:comment]; TARGET is service, provider, client or pet:<id> (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "booking")
	if err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	b, err := a.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	d, err := reviews.NewDraft(b, u.ID)
	if err != nil {
		return err
	}

	if len(rf.entries) == 0 {
		a.printf("you can review:\n")
		for _, k := range d.Kinds() {
			a.printf("  %s\n", k)
		}
		return nil
	}
	for _, e := range rf.entries {
		if err := d.Set(e.key, e.rating, e.comment); err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
	}

	results, err := a.reviews.Submit(ctx, d)
	for _, r := range results {
		if r.Err != nil {
			a.printf("%s\tfailed: %s\n", r.Key, httpclient.UserMessage(r.Err))
			continue
		}
		a.printf("%s\tsaved\n", r.Key)
	}
	if err != nil {
		if keys := reviews.FailedKeys(err); len(keys) > 0 {
			return fmt.Errorf("%d of %d reviews failed; retry with only those", len(keys), len(results))
		}
		return err
	}
	return nil
}

func cmdReviews(ctx context.Context, a *app, args []string) error {
	fs := newFlags("reviews")
	var f reviews.Filter
	fs.Int64Var(&f.Booking, "booking", 0, "only this booking")
	fs.Int64Var(&f.Service, "service", 0, "only this service")
	fs.Int64Var(&f.Provider, "provider", 0, "only this provider")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	list, err := a.reviews.List(ctx, f)
	if err != nil {
		return err
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tBOOKING\tKIND\tRATING\tCOMMENT")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n", r.ID, r.Booking, r.Kind, r.Rating, r.Comment)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(list) > 0 {
		a.printf("average: %.2f\n", reviews.Average(list))
	}
	return nil
}
