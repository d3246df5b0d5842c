// Package main 授权后端初始化工具：
// 创建（或复用）store，写入授权模型与关系元组，并输出 store ID。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"secure-agent-api/internal/config"
	"secure-agent-api/internal/corpus"
	"secure-agent-api/internal/infrastructure/authz/openfga"
	"secure-agent-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.FromContext(ctx)
	log.Info("bootstrapping authz backend",
		"addr", cfg.Authz.Addr,
		"store_name", cfg.Authz.StoreName,
	)

	client, err := openfga.NewClient(ctx, &cfg.Authz)
	if err != nil {
		logger.Fatal(ctx, "failed to dial authz backend", err)
	}
	defer client.Close()

	storeID, err := client.EnsureStore(ctx)
	if err != nil {
		logger.Fatal(ctx, "failed to ensure store", err)
	}

	modelID, err := client.WriteAuthorizationModel(ctx)
	if err != nil {
		logger.Fatal(ctx, "failed to write authorization model", err)
	}

	tuples := corpus.Tuples()
	if err := client.WriteTuples(ctx, tuples); err != nil {
		logger.Fatal(ctx, "failed to write tuples", err)
	}

	log.Info("bootstrap complete",
		"store_id", storeID,
		"model_id", modelID,
		"tuples", len(tuples),
	)

	// 便于复制到环境变量
	fmt.Printf("AUTHZ_STORE_ID=%s\n", storeID)
	fmt.Printf("AUTHZ_MODEL_ID=%s\n", modelID)
}
