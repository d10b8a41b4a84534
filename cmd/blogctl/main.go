package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"westport-blog/internal/app"
	"westport-blog/internal/infra/config"
	applog "westport-blog/internal/infra/log"
	"westport-blog/internal/usecase/retention"
	"westport-blog/internal/usecase/unsubscribe"
)

type env struct {
	cfg config.AppConfig
	log zerolog.Logger
}

type rebuildCommand struct {
	env *env
}

func (c *rebuildCommand) Execute([]string) error {
	site := app.NewSite(c.env.cfg, c.env.log)
	if err := site.Artifacts.Ensure(); err != nil {
		return err
	}
	listing, err := site.Reconciler.Rebuild()
	if err != nil {
		return err
	}
	fmt.Printf("listing rebuilt: %d posts\n", len(listing.Posts))
	return nil
}

type cleanupCommand struct {
	env     *env
	MaxAge  int  `long:"max-age" default:"-1" description:"Delete posts older than this many days (default CUTOFF_DAYS)"`
	KeepMin int  `long:"keep-min" default:"-1" description:"Always keep this many newest posts (default KEEP_MIN)"`
	DryRun  bool `long:"dry-run" description:"Report deletions without removing files"`
}

func (c *cleanupCommand) Execute([]string) error {
	cfg := c.env.cfg
	policy := retention.Policy{
		MaxAgeDays:  cfg.Retention.CutoffDays,
		KeepMinimum: cfg.Retention.KeepMin,
		DryRun:      cfg.DryRun || c.DryRun,
	}
	if c.MaxAge >= 0 {
		policy.MaxAgeDays = c.MaxAge
	}
	if c.KeepMin >= 0 {
		policy.KeepMinimum = c.KeepMin
	}
	site := app.NewSite(cfg, c.env.log)
	res, err := retention.NewManager(site.Artifacts, site.Reconciler, cfg.Location(), c.env.log).Cleanup(policy)
	if err != nil {
		return err
	}
	verb := "removed"
	if policy.DryRun {
		verb = "would remove"
	}
	for _, name := range res.Removed {
		fmt.Printf("%s %s\n", verb, name)
	}
	for _, name := range res.Failed {
		fmt.Printf("failed %s\n", name)
	}
	fmt.Printf("%s %d, kept %d\n", verb, len(res.Removed), res.Kept)
	return nil
}

type tokenCommand struct {
	env  *env
	Args struct {
		Email string `positional-arg-name:"email"`
	} `positional-args:"yes" required:"yes"`
}

func (c *tokenCommand) Execute([]string) error {
	secret := c.env.cfg.Subscribers.Secret
	if secret == "" {
		return errors.New("UNSUBSCRIBE_SECRET is not set")
	}
	link := unsubscribe.NewLinker(secret, c.env.cfg.UnsubscribeURL()).Link(c.Args.Email)
	fmt.Println(unsubscribe.Token(secret, c.Args.Email))
	fmt.Println(link)
	return nil
}

type nextTopicCommand struct {
	env *env
}

func (c *nextTopicCommand) Execute([]string) error {
	site := app.NewSite(c.env.cfg, c.env.log)
	topics, err := site.Topics.Load()
	if err != nil {
		return err
	}
	pick, err := site.Rotation.Acquire(topics)
	if err != nil {
		return err
	}
	fmt.Printf("%d/%d %s [%s]\n", pick.Index, len(topics), pick.Topic.Title, pick.Topic.Category)
	return nil
}

func main() {
	cfg := config.Load()
	e := &env{cfg: cfg, log: applog.NewLogger(cfg.AppEnv).With().Str("job", "blogctl").Logger()}

	parser := flags.NewParser(nil, flags.Default)
	commands := []struct {
		name, short, long string
		data              flags.Commander
	}{
		{"rebuild", "Rebuild the listing", "Rescan the page directory and rewrite the listing (and feed) from scratch.", &rebuildCommand{env: e}},
		{"cleanup", "Delete old posts", "Apply the retention policy; flags override CUTOFF_DAYS and KEEP_MIN.", &cleanupCommand{env: e}},
		{"token", "Print the unsubscribe token and link", "Print the unsubscribe token and link for an email address.", &tokenCommand{env: e}},
		{"next-topic", "Show the next topic", "Show which topic the next publish run would use, without changing anything.", &nextTopicCommand{env: e}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			e.log.Fatal().Err(err).Msg("blogctl: команда не зарегистрирована")
		}
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
