package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/session"
)

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("PETCARE_PASSWORD"), "password (or PETCARE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.sess.Login(ctx, session.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	a.printf("logged in as %s (%s, %s)\n", s.User.FullName(), s.User.Email, s.User.Role)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.sess.Logout(ctx); err != nil {
		return err
	}
	a.printf("logged out\n")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	if _, err := a.user(); err != nil {
		return err
	}
	u, err := a.sess.RefreshProfile(ctx)
	if err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func printUser(a *app, u users.User) {
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintf(tw, "id\t%d\n", u.ID)
	fmt.Fprintf(tw, "name\t%s\n", u.FullName())
	fmt.Fprintf(tw, "email\t%s\n", u.Email)
	fmt.Fprintf(tw, "role\t%s\n", u.Role)
	if u.Phone != "" {
		fmt.Fprintf(tw, "phone\t%s\n", u.Phone)
	}
	if p := u.ProviderProfile; p != nil {
		fmt.Fprintf(tw, "verified\t%s\n", yesNo(p.IsVerified))
	}
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	in := users.RegisterInput{}
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.Password, "password", os.Getenv("PETCARE_PASSWORD"), "password, 8 chars min (or PETCARE_PASSWORD)")
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.Phone, "phone", "", "phone")
	role := fs.String("role", string(users.RoleOwner), "OWNER or PROVIDER")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, ok := users.ParseRole(*role)
	if !ok {
		return httpclient.Invalid("role", "must be OWNER or PROVIDER")
	}
	in.Role = r

	u, err := a.users.Register(ctx, in)
	if err != nil {
		return err
	}
	a.printf("account %d created for %s; run `petcare login -email %s`\n", u.ID, u.Email, u.Email)
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags("profile")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	phone := fs.String("phone", "", "phone")
	avatar := fs.String("avatar", "", "avatar URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var patch users.UpdateInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "first":
			patch.FirstName = first
		case "last":
			patch.LastName = last
		case "phone":
			patch.Phone = phone
		case "avatar":
			patch.Avatar = avatar
		}
	})

	u, err := a.sess.SetUser(ctx, patch)
	if err != nil {
		return err
	}
	printUser(a, u)
	return nil
}

func cmdSwitchRole(ctx context.Context, a *app, args []string) error {
	fs := newFlags("switch-role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cur, err := a.user()
	if err != nil {
		return err
	}

	target := fs.Arg(0)
	if target == "" {
		// sin argumento alterna
		target = string(users.RoleProvider)
		if cur.IsProvider() {
			target = string(users.RoleOwner)
		}
	}
	role, ok := users.ParseRole(target)
	if !ok {
		return httpclient.Invalid("role", "must be OWNER or PROVIDER")
	}

	u, err := a.users.SwitchRole(ctx, role)
	if err != nil {
		return err
	}
	if err := a.sess.ReplaceUser(ctx, u); err != nil {
		return err
	}
	a.printf("active role: %s\n", u.Role)
	return nil
}

func cmdCertifications(ctx context.Context, a *app, args []string) error {
	fs := newFlags("certifications")
	provider := fs.Int64("provider", 0, "provider id (default: you)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}
	id := *provider
	if id <= 0 {
		id = u.ID
	}

	list, err := a.certs.List(ctx, id)
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDOCUMENT")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Title, c.Status, c.Document)
	}
	return nil
}

func cmdCertify(ctx context.Context, a *app, args []string) error {
	fs := newFlags("certify")
	title := fs.String("title", "", "certification title")
	document := fs.String("document", "", "document URL")
	file := fs.String("file", "", "upload this file and use its URL as the document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	doc := *document
	if *file != "" {
		up, err := a.upload(ctx, *file)
		if err != nil {
			return err
		}
		doc = up.URL
	}

	c, err := a.certs.Create(ctx, certifications.CreateInput{Title: *title, Document: doc})
	if err != nil {
		return err
	}
	a.printf("certification %d submitted (%s)\n", c.ID, c.Status)
	return nil
}
