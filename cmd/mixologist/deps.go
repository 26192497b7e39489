package main

import (
	"context"
	"fmt"

	"mixologist/internal/app"
	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"
)

// withServices 載入設定並組裝元件，結束後自動釋放
func withServices(ctx context.Context, fn func(*app.Services) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 命令列只輸出到終端，不寫日誌檔
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := common.InitLogger(level, ""); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer common.Sync()

	services, err := app.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building services: %w", err)
	}
	defer services.Close()

	return fn(services)
}
