package testctl

import (
	"context"
	"errors"
	"os"
	"strings"
)

// Tests
func runGoTests(ctx context.Context) error {
	info("==== Run Go tests ====")
	return runEnvCmdStreaming(ctx, nil, "go", "test", "./...")
}

func runBlackboxTests(ctx context.Context) error {
	info("==== Run blackbox tests ====")
	return runEnvCmdStreaming(ctx, nil, "go", "test", "-count=1", "-v", "./tests/blackbox")
}

func runE2ETests(ctx context.Context) error {
	info("==== Run in-process e2e tests ====")
	return runEnvCmdStreaming(ctx, nil, "go", "test", "-count=1", "-v", "./internal/e2e")
}

// runGeminiLive exercises the real Gemini generator. It needs an API key.
func runGeminiLive(ctx context.Context) error {
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" {
		return errors.New("GEMINI_API_KEY is not set; cannot run live:gemini")
	}
	info("==== Run live Gemini e2e ====")
	return runEnvCmdStreaming(ctx, map[string]string{"SHUFFLERD_E2E_GEMINI": "1"},
		"go", "test", "-count=1", "-v", "-run", "GeminiLive", "./internal/e2e")
}

// runSwaggerBuild checks that the swagger-tagged build still compiles.
func runSwaggerBuild(ctx context.Context) error {
	info("==== Build with swagger tag ====")
	return runEnvCmdStreaming(ctx, nil, "go", "build", "-tags", "swagger", "./...")
}
