package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/jobportal-dev/job-portal/backend/internal/auth"
	"github.com/jobportal-dev/job-portal/backend/internal/config"
	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/jobportal-dev/job-portal/backend/internal/repository"
	"github.com/jobportal-dev/job-portal/backend/internal/seed"
	"github.com/jobportal-dev/job-portal/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "operation (1: random candidates, 2: random hr accounts, 3: random jobs, 4: import postings csv)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.StringVar(&file, "file", "./internal/seed/data/postings.csv", "postings csv for op 4")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		return
	}

	if op == 0 {
		logger.Error("no operation given")
		return
	}
	if n <= 0 {
		logger.Error("n must be positive")
		return
	}

	// every seeded account shares one password, hash it once
	passwordHash, err := auth.NewCredentials(cfg.Password.BcryptCost).Hash(cfg.Seed.User.Password)
	if err != nil {
		logger.Error("failed to hash seed password", "error", err)
		return
	}

	bg := context.Background()
	switch op {
	case 1:
		cnt := 0
		for range n {
			c := utils.GenerateRandomCandidate(passwordHash, cfg.Email.UserDomain)
			if err := repo.CreateCandidate(bg, c); err != nil {
				logger.Error("failed to insert candidate", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		logger.Info("candidates inserted", slog.Int("count", cnt))
	case 2:
		scopes := []domain.Scope{domain.ScopeAdmin, domain.ScopeModerator, domain.ScopeParticipant, domain.ScopeParticipant}
		cnt := 0
		for range n {
			hr := utils.GenerateRandomHR(passwordHash, cfg.Email.UserDomain, scopes[rand.IntN(len(scopes))])
			if err := repo.CreateHR(bg, hr); err != nil {
				logger.Error("failed to insert hr account", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		logger.Info("hr accounts inserted", slog.Int("count", cnt))
	case 3:
		posters, err := repo.GetAllHR(bg)
		if err != nil {
			logger.Error("failed to list hr accounts", slog.String("error", err.Error()))
			return
		}
		if len(posters) == 0 {
			logger.Error("no hr accounts to post jobs, run op 2 first")
			return
		}

		cnt := 0
		for range n {
			job := utils.GenerateRandomJob(posters[rand.IntN(len(posters))].ID)
			if err := repo.CreateJob(bg, job); err != nil {
				logger.Error("failed to insert job", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		logger.Info("jobs inserted", slog.Int("count", cnt))
	case 4:
		f, err := os.Open(file)
		if err != nil {
			logger.Error("failed to open postings file", "error", err)
			return
		}
		defer f.Close()

		sum, err := seed.ImportPostings(bg, repo, f, passwordHash, logger)
		if err != nil {
			logger.Error("failed to import postings", "error", err)
			return
		}
		logger.Info("postings imported", "hr_created", sum.HRCreated, "jobs_created", sum.JobsCreated, "skipped", sum.Skipped)
	default:
		logger.Error("unknown operation", slog.Int("op", op))
	}
}
