package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ItsNotGoodName/x-tabstack/internal/api"
	"github.com/ItsNotGoodName/x-tabstack/internal/build"
	"github.com/ItsNotGoodName/x-tabstack/internal/bus"
	"github.com/ItsNotGoodName/x-tabstack/internal/config"
	"github.com/ItsNotGoodName/x-tabstack/internal/core"
	"github.com/ItsNotGoodName/x-tabstack/internal/web"
	"github.com/ItsNotGoodName/x-tabstack/internal/xplayer"
	"github.com/ItsNotGoodName/x-tabstack/internal/xwm"
	"github.com/ItsNotGoodName/x-tabstack/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
	"github.com/thejerf/suture/v4"
)

type Options struct {
	Debug       bool   `doc:"enable debug"`
	Host        string `doc:"host to listen on"`
	Port        int    `doc:"port to listen on" default:"8080"`
	Config      string `doc:"config file" default:".x-tabstack.yaml"`
	HWDec       string `doc:"mpv hardware decoding API"`
	PrintConfig bool   `doc:"print parsed config and exit"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)

			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			store, err := config.NewStore(config.NewYAML(configFilePath))
			if err != nil {
				return err
			}

			if err := config.Normalize(&store); err != nil {
				return err
			}

			if options.PrintConfig {
				cfg, err := store.GetConfig()
				if err != nil {
					return err
				}
				pp.Println(cfg)
				return nil
			}

			conn, err := xgb.NewConn()
			if err != nil {
				return err
			}
			defer conn.Close()

			manager := xwm.NewManager(conn, &store, NewPlayerFactory(options.HWDec))
			changes := bus.NewHub[xwm.Changed]().Register()

			router, err := api.NewRouter(api.NewHandler(manager, changes), web.FS())
			if err != nil {
				return err
			}

			super := sutureext.New("x-tabstack", sutureext.Options{Timeout: 5 * time.Second})
			sutureext.Add(super, manager)
			sutureext.Add(super, api.NewServer(core.Address(options.Host, options.Port), router))

			err = super.Serve(ctx)
			if errors.Is(err, suture.ErrTerminateSupervisorTree) {
				return nil
			}
			return err
		})
	})

	cli.Root().Version = build.Current.String()

	cli.Run()
}

// NewPlayerFactory starts one mpv per member window.
func NewPlayerFactory(hwdec string) xwm.PlayerFactory {
	return func(ctx context.Context, wid xproto.Window, stream config.Stream) (xwm.Player, error) {
		player, err := xplayer.NewPlayer(ctx, xplayer.Options{
			ID:    stream.UUID,
			WID:   wid,
			HWDec: hwdec,
			Flags: stream.Flags,
		})
		if err != nil {
			return nil, err
		}
		return player, nil
	}
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
