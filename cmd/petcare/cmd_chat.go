package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/notifications"
	"petcare-client/internal/ports/media"
)

func (a *app) upload(ctx context.Context, path string) (media.Upload, error) {
	if a.uploader == nil {
		return media.Upload{}, chat.ErrNoUploader
	}
	f, err := os.Open(path)
	if err != nil {
		return media.Upload{}, err
	}
	defer f.Close()
	return a.uploader.Upload(ctx, filepath.Base(path), f)
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	fs := newFlags("upload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.Arg(0) == "" {
		return fmt.Errorf("usage: petcare upload <file>")
	}
	up, err := a.upload(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	a.printf("%s\t%s\t%d bytes\n", up.URL, up.Kind, up.Size)
	return nil
}

func cmdRooms(ctx context.Context, a *app, _ []string) error {
	u, err := a.user()
	if err != nil {
		return err
	}
	list, err := a.chat.Rooms(ctx)
	if err != nil {
		return err
	}
	tw := a.table()
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tWITH\tBOOKING\tSUPPORT\tLAST MESSAGE")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", r.ID, r.Counterpart(u.ID), r.Booking, yesNo(r.IsSupport), r.LastMessage)
	}
	return nil
}

func (a *app) printMessage(m chat.Message, me int64) {
	who := fmt.Sprintf("#%d", m.Sender)
	if m.Sender == me {
		who = "you"
	}
	stamp := ""
	if !m.CreatedAt.IsZero() {
		stamp = m.CreatedAt.Local().Format(time.DateTime) + " "
	}
	a.printf("%s%s: %s\n", stamp, who, m.Content)
	if m.HasAttachment() {
		a.printf("    [%s] %s\n", m.AttachmentKind(a.cfg.Media.Multipart.ImageHost), m.AttachmentURL)
	}
}

func cmdChat(ctx context.Context, a *app, args []string) error {
	fs := newFlags("chat")
	watch := fs.Bool("watch", false, "keep polling for new messages")
	text := fs.String("send", "", "send this message")
	attach := fs.String("attach", "", "attach this file to the message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	room, err := argID(fs, 0, "room")
	if err != nil {
		return err
	}
	u, err := a.user()
	if err != nil {
		return err
	}

	// seen evita reimprimir lo que ya salió en pantalla
	seen := map[int64]bool{}
	feed := chat.NewFeed(a.chat, room, chat.FeedOptions{
		Interval: a.cfg.Polling.Chat,
		Log:      a.log,
		Metrics:  a.metrics,
		OnUpdate: func(msgs []chat.Message) {
			for _, m := range msgs {
				if seen[m.ID] {
					continue
				}
				seen[m.ID] = true
				a.printMessage(m, u.ID)
			}
		},
	})

	if *text != "" || *attach != "" {
		c := chat.NewComposer(a.chat, room, feed, a.uploader)
		c.SetText(*text)
		if *attach != "" {
			f, err := os.Open(*attach)
			if err != nil {
				return err
			}
			_, err = c.Attach(ctx, filepath.Base(*attach), f)
			f.Close()
			if err != nil {
				return err
			}
		}
		if _, err := c.Send(ctx); err != nil {
			return err
		}
	}

	if !*watch {
		msgs, err := a.chat.Messages(ctx, room)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			a.printMessage(m, u.ID)
		}
		return nil
	}

	a.serveMetrics(ctx, a.cfg.Metrics.Addr)
	if err := a.polls.Start(ctx, feed.Key(), feed.Loop()); err != nil {
		return err
	}
	<-ctx.Done()
	a.polls.Stop(feed.Key())
	return nil
}

func cmdDeleteRoom(ctx context.Context, a *app, args []string) error {
	fs := newFlags("delete-room")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	room, err := argID(fs, 0, "room")
	if err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	confirm := stdinConfirmer(a.in, a.out)
	if *yes {
		confirm = chat.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	}
	if err := a.chat.DeleteRoom(ctx, room, confirm); err != nil {
		return err
	}
	a.printf("room %d deleted\n", room)
	return nil
}

func cmdTicket(ctx context.Context, a *app, args []string) error {
	fs := newFlags("ticket")
	subject := fs.String("subject", "", "ticket subject")
	message := fs.String("message", "", "first message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}
	r, err := a.chat.CreateSupportTicket(ctx, *subject, *message)
	if err != nil {
		return err
	}
	a.printf("support room %d opened; follow it with `petcare chat -watch %d`\n", r.ID, r.ID)
	return nil
}

func cmdNotifications(ctx context.Context, a *app, args []string) error {
	fs := newFlags("notifications")
	unread := fs.Bool("unread", false, "only unread")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	inbox := notifications.NewInbox(a.notifs, a.log, a.metrics)
	list, err := inbox.Load(ctx)
	if err != nil {
		return err
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tTYPE\tREAD\tTITLE\tOPEN")
	for _, n := range list {
		if *unread && n.IsRead {
			continue
		}
		open := ""
		if t, ok := notifications.DeepLink(n); ok {
			open = fmt.Sprintf("%s %d", t.View, t.ID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", n.ID, n.Type, yesNo(n.IsRead), n.Title, open)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printf("%d unread\n", inbox.Unread())
	return nil
}

func cmdMarkRead(ctx context.Context, a *app, args []string) error {
	fs := newFlags("mark-read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, 0, "notification")
	if err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	inbox := notifications.NewInbox(a.notifs, a.log, a.metrics)
	if _, err := inbox.Load(ctx); err != nil {
		return err
	}
	if err := inbox.MarkRead(ctx, id); err != nil {
		return err
	}
	a.printf("%d unread\n", inbox.Unread())
	return nil
}

func cmdMarkAllRead(ctx context.Context, a *app, _ []string) error {
	if _, err := a.user(); err != nil {
		return err
	}
	inbox := notifications.NewInbox(a.notifs, a.log, a.metrics)
	if _, err := inbox.Load(ctx); err != nil {
		return err
	}
	if err := inbox.MarkAllRead(ctx); err != nil {
		return err
	}
	a.printf("all notifications read\n")
	return nil
}

func cmdBadge(ctx context.Context, a *app, args []string) error {
	fs := newFlags("badge")
	watch := fs.Bool("watch", false, "keep polling")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.user(); err != nil {
		return err
	}

	if !*watch {
		n, err := a.notifs.UnreadCount(ctx)
		if err != nil {
			return err
		}
		a.printf("%d\n", n)
		return nil
	}

	badge := notifications.NewBadge(a.notifs, notifications.BadgeOptions{
		Interval: a.cfg.Polling.Notifications,
		Log:      a.log,
		Metrics:  a.metrics,
		OnChange: func(n int) { a.printf("%s unread: %d\n", time.Now().Format(time.TimeOnly), n) },
	})
	a.serveMetrics(ctx, a.cfg.Metrics.Addr)
	if err := a.polls.Start(ctx, badge.Key(), badge.Loop()); err != nil {
		return err
	}
	<-ctx.Done()
	a.polls.Stop(badge.Key())
	return nil
}
