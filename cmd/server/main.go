package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/folio-social/folio-api/internal/config"
	"github.com/folio-social/folio-api/internal/database"
	"github.com/folio-social/folio-api/internal/handler"
	"github.com/folio-social/folio-api/internal/repository"
	"github.com/folio-social/folio-api/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	if cfg.Env == "prod" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Fatal("database connection failed")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	books := repository.NewBookRepo(db)
	genres := repository.NewGenreRepo(db)
	likes := repository.NewLikeRepo(db)
	follows := repository.NewFollowRepo(db)
	reviews := repository.NewReviewRepo(db)
	lists := repository.NewListRepo(db)
	recs := repository.NewRecommendationRepo(db)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, tokens, router.Handlers{
		Auth:   handler.NewAuthHandler(cfg, users, tokens),
		Users:  handler.NewUserHandler(users),
		Books:  handler.NewBookHandler(books),
		Genres: handler.NewGenreHandler(genres),
		Social: handler.NewSocialHandler(likes, follows, reviews),
		Review: handler.NewReviewHandler(reviews),
		Lists:  handler.NewListHandler(lists),
		Recs:   handler.NewRecommendationHandler(recs),
	})

	// Revoked tokens past their natural expiry are redundant; sweep
	// them periodically so the blacklist does not grow without bound.
	go purgeLoop(context.Background(), tokens, time.Duration(cfg.BlacklistPurgeMin)*time.Minute)

	addr := ":" + cfg.Port
	log.WithFields(log.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// purger is the sweep side of the revocation ledger, satisfied by
// repository.TokenRepo.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeLoop sweeps expired blacklist entries on a fixed interval until
// ctx is cancelled. A failed sweep is logged and retried on the next
// tick; it never takes the server down.
func purgeLoop(ctx context.Context, tokens purger, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := tokens.PurgeExpired(sweepCtx)
		cancel()
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Error("blacklist purge failed")
			continue
		}
		if n > 0 {
			log.WithFields(log.Fields{"removed": n}).Info("blacklist purge")
		}
	}
}
