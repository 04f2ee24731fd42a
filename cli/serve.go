package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/api"
	api_i "github.com/beka-birhanu/vinom-zkmaze/api/i"
	"github.com/beka-birhanu/vinom-zkmaze/api/identity"
	mazeapi "github.com/beka-birhanu/vinom-zkmaze/api/maze"
	"github.com/beka-birhanu/vinom-zkmaze/config"
	"github.com/beka-birhanu/vinom-zkmaze/guest"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/lock"
	logger "github.com/beka-birhanu/vinom-zkmaze/infrastruture/log"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/metrics"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/repo"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/token"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	clientsCollection     = "clients"
	artifactsCollection   = "maze_artifacts"
	pathResultsCollection = "path_results"

	startupTimeout = 30 * time.Second
	lockMargin     = 30 * time.Second
)

var ErrImagePin = errors.New("maze generation image id does not match MAZE_GEN_IMAGE_ID")

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			profile, err := flags.resolveProfile(cfg.DefaultProfile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, profile)
		},
	}
}

// checkImagePin fails when an image id is pinned and differs from the built program.
func checkImagePin(pinned string) error {
	if pinned == "" {
		return nil
	}
	id, err := zkvm.ParseImageID(pinned)
	if err != nil {
		return fmt.Errorf("MAZE_GEN_IMAGE_ID: %w", err)
	}
	if id != guest.MazeGenImageID {
		return fmt.Errorf("%w: built %s, pinned %s", ErrImagePin, guest.MazeGenImageID, id)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, profile zkvm.Profile) error {
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	appLogger, err := logger.New("APP", config.ColorGreen, os.Stdout)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	if err := checkImagePin(cfg.MazeGenImageID); err != nil {
		return err
	}
	appLogger.Info(fmt.Sprintf("maze-gen image %s, path-verify image %s", guest.MazeGenImageID, guest.PathVerifyImageID))

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	mongoClient, err := connectMongo(startCtx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	appLogger.Info("Connected to MongoDB")

	clients := repo.NewClientRepo(mongoClient, cfg.DBName, clientsCollection)
	if err := clients.EnsureIndexes(startCtx); err != nil {
		return fmt.Errorf("creating client indexes: %w", err)
	}
	artifacts := repo.NewArtifactRepo(mongoClient, cfg.DBName, artifactsCollection)
	results := repo.NewPathResultRepo(mongoClient, cfg.DBName, pathResultsCollection)

	var (
		locker      i.Locker = lock.NewLocalLocker()
		leaderboard i.SortedSet
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer redisClient.Close()
		if err := redisClient.Ping(startCtx).Err(); err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		locker = lock.NewRedisLocker(redisClient, cfg.ProveTimeout+lockMargin)
		leaderboard = sortedstorage.NewRedisSortedSet(redisClient, cfg.LeaderboardTTL)
		appLogger.Info("Connected to Redis")
	} else {
		appLogger.Warning("REDIS_ADDR is not set: maze locks are local and the leaderboard is disabled")
	}

	prom := metrics.NewPrometheus()
	proverLogger, err := logger.New("PROVER", config.ColorMagenta, os.Stdout)
	if err != nil {
		return err
	}
	prover, err := zkvm.NewLocalProver([]byte(cfg.ProverKey), guest.ProverOptions()...)
	if err != nil {
		return fmt.Errorf("creating prover: %w", err)
	}
	pool, err := service.NewProvingPool(service.PoolConfig{
		Backend: prover,
		Workers: int64(cfg.ProveWorkers),
		Timeout: cfg.ProveTimeout,
		Logger:  proverLogger,
		Metrics: prom,
	})
	if err != nil {
		return err
	}

	pipelineLogger, err := logger.New("PIPELINE", config.ColorCyan, os.Stdout)
	if err != nil {
		return err
	}
	committer, err := service.NewMazeCommitter(service.MazeCommitterConfig{
		Prover:         pool,
		Artifacts:      artifacts,
		Locker:         locker,
		Logger:         pipelineLogger,
		DefaultProfile: profile,
	})
	if err != nil {
		return err
	}
	verifier, err := service.NewPathVerifier(service.PathVerifierConfig{
		Prover:      pool,
		Results:     results,
		Artifacts:   artifacts,
		Leaderboard: leaderboard,
		Logger:      pipelineLogger,
		Metrics:     prom,
	})
	if err != nil {
		return err
	}

	tokenizer := token.NewJwtService(cfg.JWTSecret, cfg.JWTIssuer)
	auth, err := service.NewAuth(service.AuthConfig{
		Clients:       clients,
		Tokenizer:     tokenizer,
		SignupCredits: cfg.SignupCredits,
	})
	if err != nil {
		return err
	}
	credits, err := service.NewCredits(clients)
	if err != nil {
		return err
	}

	apiLogger, err := logger.New("API", config.ColorBlue, os.Stdout)
	if err != nil {
		return err
	}
	mazeController, err := mazeapi.NewMazeController(committer, verifier, credits, apiLogger)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%d", cfg.HostIP, cfg.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{identity.NewIdentityServer(auth), mazeController},
		AuthorizationMiddleware: identity.Authoriz(tokenizer),
		Middlewares:             []gin.HandlerFunc{prom.Middleware()},
		MetricsHandler:          prom.Handler(),
	})
	appLogger.Info(fmt.Sprintf("Listening on %s:%d with %d proving workers, default profile %s", cfg.HostIP, cfg.RESTPort, cfg.ProveWorkers, profile))
	return router.Run()
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return client, nil
}
