package gateway

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okairos/llm-bridge-api/internal/cli"
	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/llm"
)

// bootstrapConfig is the subset of provider configuration that must be
// present before an adapter is constructed.
type bootstrapConfig struct {
	ID   string `validate:"required"`
	Type string `validate:"required"`
}

// BootstrapProviders initializes and registers all enabled providers from
// configuration. Misconfigured providers are skipped with a warning rather
// than failing startup; the return value is the number registered.
func BootstrapProviders(ctx context.Context, service Service, providers []config.ProviderConfig, log *zap.Logger) int {
	registeredCount := 0
	validate := validator.New()

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			continue
		}

		if err := validate.Struct(bootstrapConfig{ID: pCfg.ID, Type: pCfg.Type}); err != nil {
			log.Warn(fmt.Sprintf("%s %s",
				cli.CrossMark(),
				cli.Style("Skipping provider with incomplete configuration", cli.Yellow),
			), zap.String("id", pCfg.ID))
			continue
		}

		// Local daemons need no credential; everything else does.
		if pCfg.APIKey == "" && pCfg.Type != string(llm.Ollama) {
			log.Warn(fmt.Sprintf("%s %s",
				cli.CrossMark(),
				cli.Style("Skipping provider due to missing API key", cli.Yellow),
			), zap.String("id", pCfg.ID))
			continue
		}

		factoryFunc, err := llm.Get(pCfg.Type)
		if err != nil {
			log.Error("Unknown provider type", zap.String("type", pCfg.Type))
			continue
		}

		providerInstance, err := factoryFunc(pCfg)
		if err != nil {
			log.Error("Failed to initialize provider",
				zap.String("id", pCfg.ID),
				zap.Error(err),
			)
			continue
		}

		if err := service.RegisterProvider(ctx, providerInstance, llm.StaticModels(pCfg)); err != nil {
			log.Error("Failed to register provider", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}

		log.Info(fmt.Sprintf("%s %s", cli.CheckMark(), cli.Style("Registered provider", cli.Green)),
			zap.String("id", pCfg.ID), zap.String("type", pCfg.Type))
		registeredCount++
	}

	if registeredCount == 0 {
		log.Warn("No providers were registered. API will not function correctly.")
	}

	return registeredCount
}
