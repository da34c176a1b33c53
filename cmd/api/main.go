package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/color"
	"github.com/vgarvardt/gue/v5"
	"github.com/vgarvardt/gue/v5/adapter/pgxv5"

	"github.com/vibra-app/vibra/internal/pkg/blobstore"
	"github.com/vibra-app/vibra/internal/pkg/postgres"
	"github.com/vibra-app/vibra/internal/pkg/readingservice"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &readingservice.Data{}
	data.Port = cfg.GetInt("port")
	data.TargetYear = cfg.GetInt("year.target")
	var err error

	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	addDBLog(dbConfig)

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}

	data.DB = db

	data.Saver, err = blobstore.NewStoreFromConfig(ctx, cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file saver")
	}

	data.MsgSender, err = postgres.NewSender(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}

	wsh := readingservice.NewWSConnKeeper()
	data.WSHandler = wsh

	hData := &readingservice.HandlerData{}
	hData.DB = db
	hData.WorkerCount = cfg.GetInt("worker.count")
	hData.WSHandler = wsh
	hData.GueClient, err = gue.NewClient(pgxv5.NewConnPool(dbPool))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}

	goapp.Log.Info().Msg("starting status change handler")
	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := readingservice.StartStatusHandler(ctx, hData)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start status handler service")
	}

	goapp.Log.Info().Msg("starting web service")
	if err := readingservice.StartWebServer(data); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
	goapp.Log.Info().Msg("exit web service")
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout gracefull shutdown")
	}
}

func addDBLog(dbConfig *pgxpool.Config) {
	logFunc := goapp.Log.Info().Msg
	dbConfig.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		logFunc("before connect")
		return nil
	}
	dbConfig.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		logFunc("after connect")
		return nil
	}
	dbConfig.BeforeAcquire = func(ctx context.Context, c *pgx.Conn) bool {
		logFunc("before acquire")
		return true
	}
	dbConfig.AfterRelease = func(c *pgx.Conn) bool {
		logFunc("after release")
		return true
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
   _    __(_) /_  _________ _
  | |  / / / __ \/ ___/ __ ` + "`" + `/
  | | / / / /_/ / /  / /_/ /
  |_|/_/_/_.___/_/   \__,_/

          ____ _____  (_)
         / __ ` + "`" + `/ __ \/ /
        / /_/ / /_/ / /
        \__,_/ .___/_/   v: %s
            /_/
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/vibra-app/vibra"))
}
