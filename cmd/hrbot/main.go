// Command hrbot runs the volunteer HR Telegram bot.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/m3rciful/hrbot/app/bot"
	"github.com/m3rciful/hrbot/app/config"
	corecmd "github.com/m3rciful/hrbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			c, ok := cfg.(*config.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return bot.Bootstrap(ctx, c)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
