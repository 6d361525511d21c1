package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mindengage-games/internal/api/http"
	auth "github.com/mind-engage/mindengage-games/internal/auth/middleware"
	"github.com/mind-engage/mindengage-games/internal/config"
	"github.com/mind-engage/mindengage-games/internal/db"
	"github.com/mind-engage/mindengage-games/internal/game"
	"github.com/mind-engage/mindengage-games/internal/generation"
	"github.com/mind-engage/mindengage-games/internal/grading"
	"github.com/mind-engage/mindengage-games/internal/preview"
	"github.com/mind-engage/mindengage-games/internal/rbac"
	"github.com/mind-engage/mindengage-games/internal/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg := config.FromEnv()

	// --- DB ---
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	games := game.NewService(game.NewSQLStore(dbh))
	if cfg.SeedTypes {
		if err := games.SeedTypes(ctx); err != nil {
			log.Fatalf("seed game types: %v", err)
		}
	}
	cancel()

	// --- Plays ---
	grader := grading.NewGrader(grading.WithMaxEditDistance(cfg.GradingMaxEdit))
	plays := preview.NewHub(cfg.PlayTTL, grader)
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for range t.C {
			if n := plays.Sweep(); n > 0 {
				log.Printf("preview: swept %d idle plays", n)
			}
		}
	}()

	// --- Generation (optional) ---
	var gen generation.Generator
	if cfg.GeneratorURL != "" {
		gen = generation.NewHTTPGenerator(generation.HTTPConfig{
			URL:          cfg.GeneratorURL,
			APIKey:       cfg.GeneratorAPIKey,
			TokenURL:     cfg.GeneratorTokenURL,
			ClientID:     cfg.GeneratorClientID,
			ClientSecret: cfg.GeneratorClientSecret,
			Timeout:      cfg.GeneratorTimeout,
		})
	} else {
		log.Printf("generation disabled: GENERATOR_URL is not set")
	}

	// --- Blobs ---
	bs, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL+"/assets")
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, auth.Account{
		Username: cfg.TeacherUser,
		PassHash: cfg.TeacherPassHash,
		Role:     rbac.RoleTeacher,
	})

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.Deps{
			Auth:          authSvc,
			Games:         games,
			Plays:         plays,
			Generator:     gen,
			MaxCount:      cfg.GenerateMaxCount,
			Images:        storage.NewImageIntake(bs, cfg.ImageMaxDim),
			Blobs:         bs,
			CORSOrigins:   cfg.CORSOrigins,
			SecureCookies: cfg.Mode == config.ModeOnline,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
