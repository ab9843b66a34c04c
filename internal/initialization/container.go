package initialization

import (
	"context"
	"fmt"
	"time"

	"github.com/frontand-tech/frontand/internal/controllers"
	"github.com/frontand-tech/frontand/internal/managers"
	"github.com/frontand-tech/frontand/internal/oauth"
	"github.com/frontand-tech/frontand/internal/payments"
	"github.com/frontand-tech/frontand/internal/storage/inmemory"
	mongostore "github.com/frontand-tech/frontand/internal/storage/mongo"
	redisstore "github.com/frontand-tech/frontand/internal/storage/redis"
	"github.com/frontand-tech/frontand/internal/workflows"
	"github.com/frontand-tech/frontand/pkg/clients/coreloop"
	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// Dependencies is everything the HTTP server needs, built once per
// process and passed by reference.
type Dependencies struct {
	ConnectionManager   domain.ConnectionManager
	MonetizationManager domain.MonetizationManager

	ConnectionController   *controllers.ConnectionController
	MonetizationController *controllers.MonetizationController
	WorkflowController     *controllers.WorkflowController
}

// BuildDependencies wires stores, collaborators, managers and controllers
// from config. Unconfigured backing services fall back to in-memory
// implementations so a bare `frontand serve` works out of the box.
func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	log.Info().Msg("Building platform dependencies")

	connectionStore, err := buildConnectionStore(ctx, config)
	if err != nil {
		return nil, err
	}

	monetizationStore, err := buildMonetizationStore(ctx, config)
	if err != nil {
		return nil, err
	}

	paymentProcessor := buildPaymentProcessor(config)

	connectionManager := managers.NewConnectionManager(managers.ConnectionManagerDependencies{
		Store:     connectionStore,
		Exchanger: oauth.NewExchanger(nil),
		Services:  ServiceCatalog(config),
	})

	monetizationManager := managers.NewMonetizationManager(managers.MonetizationManagerDependencies{
		Store:    monetizationStore,
		Payments: paymentProcessor,
		Config:   managers.DefaultMonetizationConfig(),
	})

	// Re-drive payouts that were pending when the previous process died.
	if err := monetizationManager.SettlePendingPayouts(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to settle pending payouts at startup")
	}

	coreloopOptions := []coreloop.ClientOption{}
	if config.CoreLoopBaseURL != "" {
		coreloopOptions = append(coreloopOptions, coreloop.WithBaseURL(config.CoreLoopBaseURL))
	}
	backendClient := coreloop.NewClient(coreloopOptions...)

	runner := workflows.NewRunner(workflows.RunnerDependencies{
		MonetizationManager: monetizationManager,
		BackendClient:       backendClient,
	})

	return &Dependencies{
		ConnectionManager:   connectionManager,
		MonetizationManager: monetizationManager,
		ConnectionController: controllers.NewConnectionController(controllers.ConnectionControllerDependencies{
			ConnectionManager: connectionManager,
		}),
		MonetizationController: controllers.NewMonetizationController(controllers.MonetizationControllerDependencies{
			MonetizationManager: monetizationManager,
		}),
		WorkflowController: controllers.NewWorkflowController(controllers.WorkflowControllerDependencies{
			Runner: runner,
		}),
	}, nil
}

func buildConnectionStore(ctx context.Context, config *Config) (domain.ConnectionStore, error) {
	if config.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, keeping connections in memory")
		return inmemory.NewConnectionStore(), nil
	}

	store, err := redisstore.NewConnectionStore(redisstore.ConnectionStoreConfig{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Msgf("Connection store using redis at %s", config.RedisAddr)

	return store, nil
}

func buildMonetizationStore(ctx context.Context, config *Config) (domain.MonetizationStore, error) {
	if config.MongoURI == "" {
		log.Info().Msg("MONGO_URI not set, keeping monetization records in memory")
		return inmemory.NewMonetizationStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info().Msgf("Monetization store using mongodb database %s", config.MongoDatabase)

	return mongostore.NewMonetizationStore(client.Database(config.MongoDatabase)), nil
}

func buildPaymentProcessor(config *Config) domain.PaymentProcessor {
	if config.StripeSecretKey == "" {
		log.Info().Msg("STRIPE_SECRET_KEY not set, using simulated payment processor")
		return payments.NewSimulatedProcessor()
	}

	log.Info().Msg("Using stripe payment processor")

	return payments.NewStripeProcessor(config.StripeSecretKey)
}
