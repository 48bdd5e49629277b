// Command campaignctl is the operator entry point for campaign setup:
// creating campaigns, registering recipients, enrolling them (which mints
// their tracking tokens) and printing the per-recipient report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ignite/awaresim/internal/config"
	"github.com/ignite/awaresim/internal/repository/postgres"
	"github.com/ignite/awaresim/internal/service/campaign"
)

const usage = `usage: campaignctl [-config file] <command> [flags]

commands:
  create         -file campaign.yaml
  add-recipient  -email addr [-name n] [-department d] [-role r]
  enroll         -campaign id -recipients 1,2,3
  report         -campaign id
`

// campaignFile is the YAML shape accepted by "create".
type campaignFile struct {
	Name              string    `yaml:"name"`
	Description       string    `yaml:"description"`
	Subject           string    `yaml:"subject"`
	EmailTemplate     string    `yaml:"email_template"`
	LandingSlug       string    `yaml:"landing_slug"`
	StartAt           time.Time `yaml:"start_at"`
	EndAt             time.Time `yaml:"end_at"`
	ThrottlePerMinute int       `yaml:"throttle_per_minute"`
	CreatedBy         *int64    `yaml:"created_by"`
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	svc := campaign.NewService(postgres.NewCampaignRepo(db))
	if err := run(ctx, svc, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func run(ctx context.Context, svc *campaign.Service, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	switch cmd {
	case "create":
		file := fs.String("file", "", "campaign definition (YAML)")
		fs.Parse(args)
		in, err := readCampaignFile(*file)
		if err != nil {
			return err
		}
		c, err := svc.Create(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(c)

	case "add-recipient":
		var in campaign.RecipientInput
		fs.StringVar(&in.Email, "email", "", "recipient address")
		fs.StringVar(&in.FullName, "name", "", "full name")
		fs.StringVar(&in.Department, "department", "", "department")
		fs.StringVar(&in.Role, "role", "", "role")
		fs.Parse(args)
		r, err := svc.AddRecipient(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(r)

	case "enroll":
		id := fs.Int64("campaign", 0, "campaign id")
		list := fs.String("recipients", "", "comma-separated recipient ids")
		fs.Parse(args)
		ids, err := parseIDs(*list)
		if err != nil {
			return err
		}
		res, err := svc.Enroll(ctx, *id, ids)
		if err != nil {
			return err
		}
		log.Printf("Enrolled %d recipients (%d already enrolled)", len(res.Enrolled), res.Skipped)
		return printJSON(res)

	case "report":
		id := fs.Int64("campaign", 0, "campaign id")
		fs.Parse(args)
		rep, err := svc.Report(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(rep)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func readCampaignFile(path string) (campaign.CreateInput, error) {
	if path == "" {
		return campaign.CreateInput{}, fmt.Errorf("-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return campaign.CreateInput{}, err
	}
	var f campaignFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return campaign.CreateInput{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return campaign.CreateInput{
		Name:              f.Name,
		Description:       f.Description,
		Subject:           f.Subject,
		EmailTemplate:     f.EmailTemplate,
		LandingSlug:       f.LandingSlug,
		StartAt:           f.StartAt,
		EndAt:             f.EndAt,
		ThrottlePerMinute: f.ThrottlePerMinute,
		CreatedBy:         f.CreatedBy,
	}, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recipient id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("-recipients is required")
	}
	return ids, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
