package main

import (
	"context"
	"fmt"

	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/money"
)

func cmdServices(ctx context.Context, a *app, args []string) error {
	fs := newFlags("services")
	q := fs.String("q", "", "search name and description")
	typ := fs.String("type", "", "WALK, BOARDING, GROOMING, VET or DAYCARE")
	maxPrice := fs.Float64("max-price", 0, "max price")
	active := fs.Bool("active", true, "only active services")
	provider := fs.Int64("provider", 0, "only this provider")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	f := services.Filter{
		Query:      *q,
		ActiveOnly: *active,
		MaxPrice:   money.Amount(*maxPrice),
		Provider:   *provider,
	}
	if *typ != "" {
		t, ok := services.ParseType(*typ)
		if !ok {
			return httpclient.Invalid("type", fmt.Sprintf("unknown service type %q", *typ))
		}
		f.Type = t
	}

	list, err := a.services.Search(ctx, f)
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPRICE\tPROVIDER\tACTIVE")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s/%s\t%d\t%s\n", s.ID, s.Name, s.Type, s.Price, s.Type.Unit(), s.Provider, yesNo(s.IsActive))
	}
	return nil
}

func cmdCreateService(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create-service")
	var in services.CreateInput
	fs.StringVar(&in.Name, "name", "", "service name")
	fs.StringVar(&in.Description, "description", "", "description")
	typ := fs.String("type", "", "service type")
	price := fs.Float64("price", 0, "price per unit")
	fs.BoolVar(&in.IsActive, "active", false, "publish right away (needs an approved certification)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	t, ok := services.ParseType(*typ)
	if !ok {
		return httpclient.Invalid("service_type", fmt.Sprintf("unknown service type %q", *typ))
	}
	in.Type = t
	in.Price = money.Amount(*price)

	s, err := a.services.Create(ctx, u.ID, in)
	if err != nil {
		return err
	}
	a.printf("service %d created (active: %s)\n", s.ID, yesNo(s.IsActive))
	return nil
}

func cmdPublish(ctx context.Context, a *app, args []string) error {
	fs := newFlags("publish")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "service")
	if err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	s, err := a.services.Publish(ctx, u.ID, id)
	if err != nil {
		return err
	}
	a.printf("service %d is now active\n", s.ID)
	return nil
}

func cmdUnpublish(ctx context.Context, a *app, args []string) error {
	fs := newFlags("unpublish")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "service")
	if err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	if _, err := a.services.Unpublish(ctx, id); err != nil {
		return err
	}
	a.printf("service %d deactivated\n", id)
	return nil
}

func cmdPets(ctx context.Context, a *app, args []string) error {
	fs := newFlags("pets")
	q := fs.String("q", "", "filter by name")
	species := fs.Int64("species", 0, "filter by species id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	list, err := a.pets.List(ctx)
	if err != nil {
		return err
	}
	lookup, err := a.pets.Species(ctx)
	if err != nil {
		return err
	}
	list = pets.Filter{Query: *q, Species: *species}.Apply(list)

	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tNAME\tSPECIES\tOWNER\tDOGS\tCATS\tKIDS\tMEDS")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, pets.SpeciesName(lookup, p.Species), p.Owner,
			yesNo(p.IsFriendlyWithDogs), yesNo(p.IsFriendlyWithCats),
			yesNo(p.IsFriendlyWithChildren), yesNo(p.NeedsMedication))
	}
	return nil
}

func cmdAddPet(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add-pet")
	var in pets.CreateInput
	fs.StringVar(&in.Name, "name", "", "pet name")
	fs.Int64Var(&in.Species, "species", 0, "species id (see `petcare species`)")
	fs.Int64Var(&in.Breed, "breed", 0, "breed id")
	fs.BoolVar(&in.IsFriendlyWithDogs, "dogs", false, "friendly with dogs")
	fs.BoolVar(&in.IsFriendlyWithCats, "cats", false, "friendly with cats")
	fs.BoolVar(&in.IsFriendlyWithChildren, "kids", false, "friendly with children")
	fs.BoolVar(&in.NeedsMedication, "meds", false, "needs medication")
	photo := fs.String("photo", "", "upload this image as the pet photo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	if *photo != "" {
		up, err := a.upload(ctx, *photo)
		if err != nil {
			return err
		}
		in.Photo = up.URL
	}

	p, err := a.pets.Create(ctx, in)
	if err != nil {
		return err
	}
	a.printf("pet %d (%s) created\n", p.ID, p.Name)
	return nil
}

func cmdLinkPet(ctx context.Context, a *app, args []string) error {
	fs := newFlags("link-pet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "pet")
	if err != nil {
		return err
	}
	email := fs.Arg(1)
	if _, err := a.user(); err != nil {
		return err
	}
	if err := a.pets.Link(ctx, id, email); err != nil {
		return err
	}
	a.printf("pet %d shared with %s\n", id, email)
	return nil
}

func cmdSpecies(ctx context.Context, a *app, _ []string) error {
	if _, err := a.user(); err != nil {
		return err
	}
	list, err := a.pets.Species(ctx)
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tNAME")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\n", s.ID, s.Name)
	}
	return nil
}

func cmdBreeds(ctx context.Context, a *app, args []string) error {
	fs := newFlags("breeds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	species, err := argID(fs, 0, "species")
	if err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	list, err := a.pets.Breeds(ctx, species)
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tNAME")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\n", b.ID, b.Name)
	}
	return nil
}
